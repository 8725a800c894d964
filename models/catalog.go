package models

// CatalogItem is one entry of a vendor reference dictionary
// (country, departure city, region, subregion or meal type).
type CatalogItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// HotelItem is a vendor hotel dictionary entry.
type HotelItem struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Stars     int     `json:"stars,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	CountryID int     `json:"countryId,omitempty"`
	RegionID  int     `json:"regionId,omitempty"`
}
