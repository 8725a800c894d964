package models

import "time"

// Offer is one concrete bookable travel package returned by the vendor.
// Offers are immutable once produced by the search layer.
type Offer struct {
	TourID      string    `json:"tourId"`
	HotelID     int       `json:"hotelId,omitempty"`
	HotelName   string    `json:"hotelName"`
	HotelStars  int       `json:"hotelStars"`
	HotelRating float64   `json:"hotelRating,omitempty"`
	CountryID   int       `json:"countryId,omitempty"`
	Country     string    `json:"country"`
	Region      string    `json:"region,omitempty"`
	Subregion   string    `json:"subregion,omitempty"`
	Room        string    `json:"room,omitempty"`
	Meal        string    `json:"meal,omitempty"`
	CheckIn     time.Time `json:"checkIn"`
	Nights      int       `json:"nights"`
	Price       int       `json:"price"`
	Currency    string    `json:"currency"`
	Adults      int       `json:"adults,omitempty"`
	Children    int       `json:"children,omitempty"`

	// DepartureCity echoes the searched departure, not anything the vendor
	// reports: cards must show the city the user asked for.
	DepartureCity string `json:"departureCity,omitempty"`

	Operator   string `json:"operator,omitempty"`
	HotelLink  string `json:"hotelLink,omitempty"`
	HotelPhoto string `json:"hotelPhoto,omitempty"`
}

// ActualizedPrice is the result of re-validating one offer's price right
// before a booking hand-off. It always wins over any cached value.
type ActualizedPrice struct {
	TourID        string `json:"tourId"`
	Price         int    `json:"price"`
	OriginalPrice int    `json:"originalPrice,omitempty"`
	PriceChanged  bool   `json:"priceChanged"`
	Available     bool   `json:"available"`
	Currency      string `json:"currency,omitempty"`
}
