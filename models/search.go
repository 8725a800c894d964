package models

import "time"

// SearchCriteria is the resolved, id-keyed input to a vendor search. The
// catalog service resolves user-entered names to these ids before submit.
type SearchCriteria struct {
	DepartureID  int       `json:"departureId"`
	CountryID    int       `json:"countryId"`
	DateFrom     time.Time `json:"dateFrom"`
	DateTo       time.Time `json:"dateTo"`
	NightsFrom   int       `json:"nightsFrom"`
	NightsTo     int       `json:"nightsTo"`
	Adults       int       `json:"adults"`
	ChildrenAges []int     `json:"childrenAges,omitempty"`
	Stars        int       `json:"stars,omitempty"`
	Meal         FoodType  `json:"meal,omitempty"`
	HotelIDs     []int     `json:"hotelIds,omitempty"`
	HotelName    string    `json:"hotelName,omitempty"`
	RegionIDs    []int     `json:"regionIds,omitempty"`
	PriceFrom    int       `json:"priceFrom,omitempty"`
	PriceTo      int       `json:"priceTo,omitempty"`
}

// SearchResult is what a finished (or best-partial) search hands back.
type SearchResult struct {
	Offers     []Offer `json:"offers"`
	TotalFound int     `json:"totalFound"`
	RequestID  string  `json:"requestId,omitempty"`

	// Partial marks a result assembled from an unfinished poll cycle.
	Partial bool `json:"partial,omitempty"`

	// HasMore hints that paging or a continue call can surface more offers.
	HasMore bool `json:"hasMore,omitempty"`
}

// SearchStatus is one poll snapshot of an in-flight vendor search.
type SearchStatus struct {
	RequestID      string `json:"requestId"`
	State          string `json:"state"`
	Progress       int    `json:"progress"`
	OperatorsDone  int    `json:"operatorsDone,omitempty"`
	OperatorsTotal int    `json:"operatorsTotal,omitempty"`
}

// Finished reports whether the vendor marked the search complete.
func (s SearchStatus) Finished() bool {
	return s.State == "finished"
}
