package search

import (
	"net/url"
	"strconv"
	"strings"

	"voyago/models"
)

// mealIDByCode maps board-basis codes to the ids the gateway's meal
// dictionary assigns. The search endpoint only accepts the numeric ids.
var mealIDByCode = map[models.FoodType]int{
	models.FoodRO:  2,
	models.FoodBB:  3,
	models.FoodHB:  4,
	models.FoodFB:  5,
	models.FoodAI:  7,
	models.FoodUAI: 9,
}

var mealCodeByID = func() map[int]models.FoodType {
	m := make(map[int]models.FoodType, len(mealIDByCode))
	for code, id := range mealIDByCode {
		m[id] = code
	}
	return m
}()

const (
	defaultNights = 7

	// dateWindowSlack widens the departure window past the stay length so
	// operators with shifted charter days still match.
	dateWindowSlack = 2

	// resultsPerPage keeps the sample deep enough that client-side star
	// filtering still leaves offers to show.
	resultsPerPage = 100
)

// buildCriteria turns collected trip slots into an id-keyed search request.
// Only the already-resolved ids go in; name resolution happens in the
// orchestrator before this point.
func buildCriteria(trip models.TripSlots, countryID, departureID int, hotelIDs []int, regionIDs []int) models.SearchCriteria {
	nights := trip.Nights
	if nights <= 0 {
		nights = defaultNights
	}

	dateFrom := trip.DateStart
	dateTo := dateFrom
	if !dateFrom.IsZero() {
		dateTo = dateFrom.AddDate(0, 0, nights+dateWindowSlack)
	}

	adults := trip.Adults
	if adults <= 0 {
		adults = 2
	}

	crit := models.SearchCriteria{
		DepartureID:  departureID,
		CountryID:    countryID,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		NightsFrom:   nights,
		NightsTo:     nights + 1,
		Adults:       adults,
		ChildrenAges: trip.ChildrenAges,
		Stars:        trip.Stars,
		Meal:         trip.Meal,
		HotelIDs:     hotelIDs,
		RegionIDs:    regionIDs,
	}
	if len(hotelIDs) == 0 && trip.HotelName != "" {
		crit.HotelName = trip.HotelName
	}
	if trip.MaxPrice > 0 {
		crit.PriceTo = trip.MaxPrice
	}
	return crit
}

// searchValues encodes criteria as search.php query parameters.
func searchValues(c models.SearchCriteria) url.Values {
	q := url.Values{}
	q.Set("departure", strconv.Itoa(c.DepartureID))
	q.Set("country", strconv.Itoa(c.CountryID))
	if !c.DateFrom.IsZero() {
		q.Set("datefrom", c.DateFrom.Format(vendorDateLayout))
		dateTo := c.DateTo
		if dateTo.IsZero() {
			dateTo = c.DateFrom
		}
		q.Set("dateto", dateTo.Format(vendorDateLayout))
	}
	q.Set("nightsfrom", strconv.Itoa(c.NightsFrom))
	q.Set("nightsto", strconv.Itoa(c.NightsTo))
	q.Set("adults", strconv.Itoa(c.Adults))
	// Regular (GDS) flights stay visible; hiding them starves the results.
	q.Set("hideregular", "0")

	if n := len(c.ChildrenAges); n > 0 {
		q.Set("child", strconv.Itoa(n))
		for i, age := range c.ChildrenAges {
			q.Set("childage"+strconv.Itoa(i+1), strconv.Itoa(age))
		}
	}

	if len(c.RegionIDs) > 0 {
		q.Set("regions", joinInts(c.RegionIDs))
	}

	if len(c.HotelIDs) > 0 {
		q.Set("hotels", joinInts(c.HotelIDs))
	} else if c.HotelName != "" {
		q.Set("hotel", c.HotelName)
	}

	if c.Stars > 0 {
		// The gateway reads these as an exact band, yet some operators leak
		// lower categories anyway; the orchestrator re-filters.
		q.Set("starsfrom", strconv.Itoa(c.Stars))
		q.Set("starsto", strconv.Itoa(c.Stars))
	}

	if c.Meal != "" {
		if id, ok := mealIDByCode[c.Meal]; ok {
			q.Set("meal", strconv.Itoa(id))
		}
	}

	if c.PriceFrom > 0 {
		q.Set("pricefrom", strconv.Itoa(c.PriceFrom))
	}
	if c.PriceTo > 0 {
		q.Set("priceto", strconv.Itoa(c.PriceTo))
	}

	return q
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
