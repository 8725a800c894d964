package catalog

import (
	"context"

	"voyago/models"
)

// Lister fetches the vendor reference lists the catalog is built from.
// Implemented by the tour vendor client.
type Lister interface {
	ListCountries(ctx context.Context) ([]models.CatalogItem, error)
	ListDepartures(ctx context.Context) ([]models.CatalogItem, error)
	ListRegions(ctx context.Context, countryID int) ([]models.CatalogItem, error)
	ListSubregions(ctx context.Context, countryID int) ([]models.CatalogItem, error)
	ListHotels(ctx context.Context, countryID int) ([]models.HotelItem, error)
}

// Service resolves human place and hotel names to vendor catalog IDs.
type Service interface {
	// Refresh reloads countries and departure cities from the vendor and
	// drops the per-country caches so they reload on demand.
	Refresh(ctx context.Context) error
	// CountryID resolves a country name, tolerating declensions and typos.
	CountryID(name string) (int, bool)
	// CountryName returns the display name for a country ID.
	CountryName(id int) string
	// DepartureID resolves a departure city name.
	DepartureID(name string) (int, bool)
	// RegionID resolves a resort or region name within a country, checking
	// regions first and falling back to subregions.
	RegionID(ctx context.Context, countryID int, name string) (int, bool)
	// FindHotels matches a free-text hotel query, including Cyrillic
	// spellings of Latin hotel names, against the country's hotel list.
	FindHotels(ctx context.Context, query string, countryID int) ([]models.HotelItem, error)
}
