package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"voyago/models"
)

// The gateway speaks PHP-flavoured JSON: numbers arrive as strings, empty
// values as "", and one-element lists collapse into bare objects. The flex
// types below absorb all of those shapes so the row structs stay plain.

type flexInt int

func (v *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("flexInt: %q is not numeric", s)
		}
		*v = flexInt(int(f))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = flexInt(int(f))
	return nil
}

type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("flexFloat: %q is not numeric", s)
		}
		*v = flexFloat(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = flexFloat(f)
	return nil
}

type flexString string

func (v *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = flexString(s)
		return nil
	}
	*v = flexString(string(b))
	return nil
}

// listOf tolerates a single object where a list is documented.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" || string(b) == `""` || string(b) == "[]" {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, (*[]T)(l))
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = listOf[T]{one}
	return nil
}

// ---- response envelopes ----

type submitEnvelope struct {
	Result struct {
		RequestID flexString `json:"requestid"`
	} `json:"result"`
	Data struct {
		RequestID flexString `json:"requestid"`
	} `json:"data"`
	RequestID flexString `json:"requestid"`
	Error     flexString `json:"error"`
}

func (e submitEnvelope) requestID() string {
	if e.Result.RequestID != "" {
		return string(e.Result.RequestID)
	}
	if e.RequestID != "" {
		return string(e.RequestID)
	}
	return string(e.Data.RequestID)
}

type statusEnvelope struct {
	Data struct {
		Status struct {
			State       string  `json:"state"`
			Progress    flexInt `json:"progress"`
			Done        flexInt `json:"done"`
			Total       flexInt `json:"total"`
			HotelsFound flexInt `json:"hotelsfound"`
			ToursFound  flexInt `json:"toursfound"`
		} `json:"status"`
	} `json:"data"`
	Error flexString `json:"error"`
}

type resultEnvelope struct {
	Data struct {
		Result struct {
			Hotel listOf[hotelRow] `json:"hotel"`
		} `json:"result"`
	} `json:"data"`
	Error flexString `json:"error"`
}

type hotToursEnvelope struct {
	HotTours struct {
		Tour listOf[hotTourRow] `json:"tour"`
	} `json:"hottours"`
	Error flexString `json:"error"`
}

type actualizeEnvelope struct {
	Data struct {
		Tour struct {
			Price         flexInt    `json:"price"`
			OriginalPrice flexInt    `json:"originalprice"`
			Available     flexString `json:"available"`
			Currency      string     `json:"currency"`
		} `json:"tour"`
	} `json:"data"`
	Error flexString `json:"error"`
}

// listEnvelope covers list.php; both documented nestings occur in the wild.
type listEnvelope struct {
	Lists struct {
		Countries struct {
			Country listOf[itemRow] `json:"country"`
		} `json:"countries"`
		Departures struct {
			Departure listOf[itemRow] `json:"departure"`
		} `json:"departures"`
		Regions struct {
			Region listOf[itemRow] `json:"region"`
		} `json:"regions"`
		Subregions struct {
			Subregion listOf[itemRow] `json:"subregion"`
		} `json:"subregions"`
		Hotels struct {
			Hotel listOf[hotelDictRow] `json:"hotel"`
		} `json:"hotels"`
	} `json:"lists"`
	Data struct {
		Country   listOf[itemRow]      `json:"country"`
		Departure listOf[itemRow]      `json:"departure"`
		Region    listOf[itemRow]      `json:"region"`
		Subregion listOf[itemRow]      `json:"subregion"`
		Hotel     listOf[hotelDictRow] `json:"hotel"`
	} `json:"data"`
	Error flexString `json:"error"`
}

type itemRow struct {
	ID   flexInt `json:"id"`
	Name string  `json:"name"`
}

type hotelDictRow struct {
	ID       flexInt   `json:"id"`
	Name     string    `json:"name"`
	Stars    flexInt   `json:"stars"`
	Rating   flexFloat `json:"rating"`
	RegionID flexInt   `json:"regionid"`
}

// ---- result rows ----

type hotelRow struct {
	HotelCode     flexInt   `json:"hotelcode"`
	HotelName     string    `json:"hotelname"`
	HotelStars    flexInt   `json:"hotelstars"`
	HotelRating   flexFloat `json:"hotelrating"`
	CountryID     flexInt   `json:"countryid"`
	CountryName   string    `json:"countryname"`
	RegionName    string    `json:"regionname"`
	SubregionName string    `json:"subregionname"`
	ResortName    string    `json:"resortname"`
	Price         flexInt   `json:"price"`
	FullDescLink  string    `json:"fulldesclink"`
	PictureLink   string    `json:"picturelink"`
	Tours         struct {
		Tour listOf[tourRow] `json:"tour"`
	} `json:"tours"`
}

type tourRow struct {
	TourID       flexString `json:"tourid"`
	Price        flexInt    `json:"price"`
	FlyDate      string     `json:"flydate"`
	CheckIn      string     `json:"checkin"`
	Nights       flexInt    `json:"nights"`
	Meal         flexString `json:"meal"`
	Room         string     `json:"room"`
	Adults       flexInt    `json:"adults"`
	Child        flexInt    `json:"child"`
	OperatorName string     `json:"operatorname"`
}

type hotTourRow struct {
	TourID        flexString `json:"tourid"`
	HotelName     string     `json:"hotelname"`
	HotelStars    flexInt    `json:"hotelstars"`
	CountryName   string     `json:"countryname"`
	RegionName    string     `json:"regionname"`
	SubregionName string     `json:"subregionname"`
	Room          string     `json:"room"`
	Price         flexInt    `json:"price"`
	FlyDate       string     `json:"flydate"`
	Nights        flexInt    `json:"nights"`
	OperatorName  string     `json:"operatorname"`
	HotelPicture  string     `json:"hotelpicture"`
	FullDescLink  string     `json:"fulldesclink"`
}

// ---- row conversion ----

const vendorDateLayout = "02.01.2006"

func parseVendorDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(vendorDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// mealFromVendor normalizes the board basis field, which arrives either as a
// dictionary id or as a code string. Unknown values default to AI, the
// dominant plan on package tours.
func mealFromVendor(raw string) models.FoodType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.FoodAI
	}
	if id, err := strconv.Atoi(raw); err == nil {
		if code, ok := mealCodeByID[id]; ok {
			return code
		}
		return models.FoodAI
	}
	code := models.FoodType(strings.ToUpper(raw))
	if _, ok := mealIDByCode[code]; ok {
		return code
	}
	return models.FoodAI
}

// offerFromHotelRow flattens the nested hotel→tours shape to a single offer,
// priced from the hotel row with the first tour's details. A zero price means
// the row is unusable and is skipped.
func offerFromHotelRow(h hotelRow, now time.Time) (models.Offer, bool) {
	var tour tourRow
	if len(h.Tours.Tour) > 0 {
		tour = h.Tours.Tour[0]
	}

	price := int(h.Price)
	if price == 0 {
		price = int(tour.Price)
	}
	if price == 0 {
		return models.Offer{}, false
	}

	checkIn, ok := parseVendorDate(tour.FlyDate)
	if !ok {
		checkIn, ok = parseVendorDate(tour.CheckIn)
	}
	if !ok {
		checkIn = now.AddDate(0, 0, 14)
	}

	nights := int(tour.Nights)
	if nights == 0 {
		nights = 7
	}

	adults := int(tour.Adults)
	if adults == 0 {
		adults = 2
	}

	return models.Offer{
		TourID:      string(tour.TourID),
		HotelID:     int(h.HotelCode),
		HotelName:   h.HotelName,
		HotelStars:  int(h.HotelStars),
		HotelRating: float64(h.HotelRating),
		CountryID:   int(h.CountryID),
		Country:     h.CountryName,
		Region:      h.RegionName,
		Subregion:   firstNonEmpty(h.SubregionName, h.ResortName),
		Room:        tour.Room,
		Meal:        string(mealFromVendor(string(tour.Meal))),
		CheckIn:     checkIn,
		Nights:      nights,
		Price:       price,
		Currency:    "RUB",
		Adults:      adults,
		Children:    int(tour.Child),
		Operator:    tour.OperatorName,
		HotelLink:   h.FullDescLink,
		HotelPhoto:  fixPhotoURL(h.PictureLink),
	}, true
}

func offerFromHotTour(t hotTourRow, now time.Time) (models.Offer, bool) {
	if int(t.Price) == 0 {
		return models.Offer{}, false
	}

	checkIn, ok := parseVendorDate(t.FlyDate)
	if !ok {
		checkIn = now.AddDate(0, 0, 3)
	}

	nights := int(t.Nights)
	if nights == 0 {
		nights = 7
	}

	return models.Offer{
		TourID:     string(t.TourID),
		HotelName:  t.HotelName,
		HotelStars: int(t.HotelStars),
		Country:    t.CountryName,
		Region:     t.RegionName,
		Subregion:  t.SubregionName,
		Room:       t.Room,
		Meal:       string(models.FoodAI),
		CheckIn:    checkIn,
		Nights:     nights,
		Price:      int(t.Price),
		Currency:   "RUB",
		Adults:     2,
		Operator:   t.OperatorName,
		HotelLink:  t.FullDescLink,
		HotelPhoto: fixPhotoURL(t.HotelPicture),
	}, true
}

// fixPhotoURL upgrades protocol-relative links, which browsers refuse to
// load from a chat widget.
func fixPhotoURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func catalogItems(rows listOf[itemRow]) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, len(rows))
	for _, r := range rows {
		if int(r.ID) == 0 || r.Name == "" {
			continue
		}
		items = append(items, models.CatalogItem{ID: int(r.ID), Name: r.Name})
	}
	return items
}
