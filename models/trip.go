package models

import "time"

// Slot names a single trip parameter the dialogue can ask about.
type Slot string

const (
	SlotNone        Slot = ""
	SlotDestination Slot = "destination"
	SlotDeparture   Slot = "departure"
	SlotDateStart   Slot = "date_start"
	SlotNights      Slot = "nights"
	SlotAdults      Slot = "adults"
	SlotChildAges   Slot = "child_ages"
	SlotStars       Slot = "stars"
	SlotMeal        Slot = "meal"
)

// DatePrecision tags how exact a resolved start date is. Exact, weekend and
// holiday dates can be searched as-is; a month-only date still needs a day.
type DatePrecision string

const (
	PrecisionNone    DatePrecision = ""
	PrecisionExact   DatePrecision = "exact"
	PrecisionWeekend DatePrecision = "weekend"
	PrecisionHoliday DatePrecision = "holiday"
	PrecisionMonth   DatePrecision = "month"
)

// FoodType is a board basis code as the vendor catalogs it.
type FoodType string

const (
	FoodRO  FoodType = "RO"  // room only
	FoodBB  FoodType = "BB"  // breakfast
	FoodHB  FoodType = "HB"  // half board
	FoodFB  FoodType = "FB"  // full board
	FoodAI  FoodType = "AI"  // all inclusive
	FoodUAI FoodType = "UAI" // ultra all inclusive
)

var foodTitles = map[FoodType]string{
	FoodRO:  "без питания",
	FoodBB:  "завтраки",
	FoodHB:  "завтрак и ужин",
	FoodFB:  "полный пансион",
	FoodAI:  "всё включено",
	FoodUAI: "ультра всё включено",
}

// Title returns the human-readable Russian label for the board basis.
func (f FoodType) Title() string {
	if t, ok := foodTitles[f]; ok {
		return t
	}
	return string(f)
}

// TripSlots is the structured trip-parameter record filled over the
// conversation. Fields are additive across turns: a later message may fill an
// empty field or explicitly restate one, but an unrelated answer never clears
// anything.
type TripSlots struct {
	Destination   string        `json:"destination,omitempty"`
	Departure     string        `json:"departure,omitempty"`
	DateStart     time.Time     `json:"dateStart,omitempty"`
	DatePrecision DatePrecision `json:"datePrecision,omitempty"`
	Nights        int           `json:"nights,omitempty"`
	Adults        int           `json:"adults,omitempty"`
	ChildrenAges  []int         `json:"childrenAges,omitempty"`

	// ChildrenPending counts children declared without an age ("2+1"). The
	// search cannot price a child without an age, so a pending count blocks
	// the search until the ages arrive.
	ChildrenPending int `json:"childrenPending,omitempty"`

	Stars     int      `json:"stars,omitempty"`
	Meal      FoodType `json:"meal,omitempty"`
	HotelName string   `json:"hotelName,omitempty"`
	MaxPrice  int      `json:"maxPrice,omitempty"`

	// SkipQualityCheck suppresses the star-rating question once a specific
	// hotel is named: the hotel already answers the quality question.
	SkipQualityCheck bool `json:"skipQualityCheck,omitempty"`

	// HotTour marks an explicit request for discounted near-term offers,
	// which relaxes the required-slot set to the departure city.
	HotTour bool `json:"hotTour,omitempty"`
}

// requiredOrder fixes the priority in which missing slots are asked for.
var requiredOrder = []Slot{SlotDestination, SlotDeparture, SlotDateStart, SlotNights, SlotAdults}

// HasDate reports whether a usable start date is set. A month-only date still
// counts as missing: the day question has to be asked first.
func (t *TripSlots) HasDate() bool {
	return !t.DateStart.IsZero() && t.DatePrecision != PrecisionMonth
}

// MissingRequired lists the required slots still unfilled, in ask order.
// A hot-tour request only needs a departure city.
func (t *TripSlots) MissingRequired() []Slot {
	if t.HotTour {
		if t.Departure == "" {
			return []Slot{SlotDeparture}
		}
		return nil
	}
	var missing []Slot
	for _, s := range requiredOrder {
		switch s {
		case SlotDestination:
			if t.Destination == "" {
				missing = append(missing, s)
			}
		case SlotDeparture:
			if t.Departure == "" {
				missing = append(missing, s)
			}
		case SlotDateStart:
			if !t.HasDate() {
				missing = append(missing, s)
			}
		case SlotNights:
			if t.Nights == 0 {
				missing = append(missing, s)
			}
		case SlotAdults:
			if t.Adults == 0 {
				missing = append(missing, s)
			} else if t.ChildrenPending > 0 {
				// Children are declared but not priceable yet.
				missing = append(missing, SlotChildAges)
			}
		}
	}
	return missing
}

// Complete reports whether every required slot is filled.
func (t *TripSlots) Complete() bool {
	return len(t.MissingRequired()) == 0
}

// TotalPax is the full party size, adults plus children, counting children
// whose ages are still unknown.
func (t *TripSlots) TotalPax() int {
	return t.Adults + len(t.ChildrenAges) + t.ChildrenPending
}
