package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"voyago/models"
)

var (
	starsPattern   = regexp.MustCompile(`(?i)(\d)\s*(?:звёзд|звезд[ыа]?|★|\*)`)
	hotTourPattern = regexp.MustCompile(`(?i)горящ(?:ий|ие|ую|его)\s*(?:тур|путёвк|предложен)`)
	// "до 150 тысяч", "бюджет 200000"
	priceThousandsPattern = regexp.MustCompile(`(?i)(?:до|бюджет)\s*(\d{2,3})\s*(?:тыс|т\.?\s?р)`)
	priceRublesPattern    = regexp.MustCompile(`(?i)(?:до|бюджет)\s*(\d{4,7})\s*(?:руб|₽)?`)
	// "15-го", "20 числа" as the whole answer to the day question
	dayAnswerPattern = regexp.MustCompile(`^(\d{1,2})(?:-?го)?(?:\s*числ[ао])?$`)
)

// foodPatterns is ordered: UAI has to be tested before AI, "ultra all
// inclusive" contains "all inclusive".
var foodPatterns = []struct {
	food    models.FoodType
	pattern *regexp.Regexp
}{
	{models.FoodUAI, regexp.MustCompile(`(?i)ультра\s*(?:всё|все)\s*включено|uai|ultra\s*all`)},
	{models.FoodAI, regexp.MustCompile(`(?i)всё\s*включено|все\s*включено|ол\s*инклюзив|all\s*inclusive|(?:^|\s)ai(?:$|\s)`)},
	{models.FoodHB, regexp.MustCompile(`(?i)полупансион|half\s*board|(?:^|\s)hb(?:$|\s)`)},
	{models.FoodBB, regexp.MustCompile(`(?i)завтрак[иам]?|breakfast|(?:^|\s)bb(?:$|\s)`)},
	{models.FoodFB, regexp.MustCompile(`(?i)полный\s*пансион|full\s*board|(?:^|\s)fb(?:$|\s)`)},
}

// Extractor turns free text into slot updates. It is deterministic and does
// no I/O; the clock is injectable so date resolution is testable.
type Extractor struct {
	Now func() time.Time
}

func New() *Extractor {
	return &Extractor{Now: time.Now}
}

// Extract parses one user message against the current slots. The lastAsked
// hint resolves elliptical answers: a bare "7" after the nights question is
// the night count, a bare city after the departure question is the departure
// city. Fields are only ever filled or explicitly restated, never cleared.
func (e *Extractor) Extract(text string, current models.TripSlots, lastAsked models.Slot) models.TripSlots {
	slots := current
	lower := strings.ToLower(strings.TrimSpace(text))
	today := e.Now()

	// A message that is nothing but a number answers the slot we just asked
	// about, within that slot's bounds.
	if n, err := strconv.Atoi(lower); err == nil {
		switch lastAsked {
		case models.SlotNights:
			if 1 <= n && n <= 30 {
				slots.Nights = n
				return slots
			}
		case models.SlotAdults:
			if 1 <= n && n <= 10 {
				slots.Adults = n
				return slots
			}
		case models.SlotStars:
			if 3 <= n && n <= 5 {
				slots.Stars = n
				return slots
			}
		}
	}

	// A bare city name answers the departure question directly.
	if lastAsked == models.SlotDeparture {
		if city := matchCity(lower); city != "" {
			slots.Departure = city
		}
	}

	// "15", "15-го" or "20 числа" after the day question pins a month-only
	// date to an exact day within that month.
	if lastAsked == models.SlotDateStart && slots.DatePrecision == models.PrecisionMonth && !slots.DateStart.IsZero() {
		if m := dayAnswerPattern.FindStringSubmatch(lower); m != nil {
			day, _ := strconv.Atoi(m[1])
			if d := makeDate(slots.DateStart.Year(), int(slots.DateStart.Month()), day); !d.IsZero() {
				slots.DateStart = d
				slots.DatePrecision = models.PrecisionExact
				return slots
			}
		}
	}

	// A plain age list answers the child-age question: "5 и 8", "5, 8 лет".
	if lastAsked == models.SlotChildAges {
		if noChildrenAnswer(lower) {
			slots.ChildrenPending = 0
			return slots
		}
		if extractBareAges(lower, &slots) > 0 {
			return slots
		}
	}

	extractCountry(lower, &slots, lastAsked)
	extractCity(lower, &slots)
	extractNights(lower, &slots)
	extractDate(text, &slots, today)
	extractParty(lower, &slots)
	extractChildren(text, &slots)
	declareMentionedChildren(lower, &slots)
	extractHotel(text, &slots)
	extractStars(lower, &slots)
	extractFood(lower, &slots)
	extractPrice(lower, &slots)
	checkHotTour(lower, &slots, today)

	return slots
}

// extractCountry fills or restates the destination. A destination that is
// already set survives the departure-city answer even when that answer also
// matches a country form: only a message carrying destination cues outside
// the departure context may change it.
func extractCountry(lower string, slots *models.TripSlots, lastAsked models.Slot) {
	m := countriesPattern.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	normalized := countryNormalize[strings.ToLower(m[1])]
	if normalized == "" {
		return
	}
	if slots.Destination != "" && lastAsked == models.SlotDeparture && normalized != slots.Destination {
		return
	}
	slots.Destination = normalized
}

func extractCity(lower string, slots *models.TripSlots) {
	m := departureCitiesPattern.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	raw := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(m[1]), "-", " "))
	raw = strings.Join(strings.Fields(raw), " ")
	if normalized, ok := cityNormalize[raw]; ok {
		slots.Departure = normalized
	}
}

// matchCity resolves a short answer like "Москва", "из Питера" or "спб" to a
// canonical departure city.
func matchCity(lower string) string {
	text := strings.TrimSpace(lower)
	for _, prefix := range []string{"из ", "с ", "от ", "вылет из "} {
		text = strings.TrimPrefix(text, prefix)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if c, ok := cityNormalize[text]; ok {
		return c
	}
	// Partial match both ways, longest keys first for determinism.
	for _, key := range cityKeysByLength {
		if strings.Contains(text, key) || strings.Contains(key, text) {
			return cityNormalize[key]
		}
	}
	return ""
}

func extractDate(text string, slots *models.TripSlots, today time.Time) {
	start, precision, rangeNights := resolveDate(text, today)
	if start.IsZero() {
		return
	}
	slots.DateStart = start
	slots.DatePrecision = precision
	if rangeNights > 0 {
		// An explicit day range is authoritative for this turn; the night
		// count is derived from it.
		slots.Nights = rangeNights
	}
}

func extractStars(lower string, slots *models.TripSlots) {
	if m := starsPattern.FindStringSubmatch(lower); m != nil {
		stars, _ := strconv.Atoi(m[1])
		if 3 <= stars && stars <= 5 {
			slots.Stars = stars
		}
	}
}

func extractFood(lower string, slots *models.TripSlots) {
	for _, fp := range foodPatterns {
		if fp.pattern.MatchString(lower) {
			slots.Meal = fp.food
			return
		}
	}
}

func extractPrice(lower string, slots *models.TripSlots) {
	if m := priceThousandsPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		slots.MaxPrice = n * 1000
		return
	}
	if m := priceRublesPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		slots.MaxPrice = n
	}
}

// checkHotTour flags an explicit hot-tour request. The date defaults to
// tomorrow only when nothing set it.
func checkHotTour(lower string, slots *models.TripSlots, today time.Time) {
	if !hotTourPattern.MatchString(lower) {
		return
	}
	slots.HotTour = true
	if slots.DateStart.IsZero() {
		slots.DateStart = dateOnly(today.AddDate(0, 0, 1))
		slots.DatePrecision = models.PrecisionExact
	}
}
