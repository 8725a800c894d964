package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyago/models"
)

type fakeLister struct {
	countries  []models.CatalogItem
	departures []models.CatalogItem
	regions    map[int][]models.CatalogItem
	subregions map[int][]models.CatalogItem
	hotels     map[int][]models.HotelItem
	err        error
	hotelCalls int
}

func (f *fakeLister) ListCountries(ctx context.Context) ([]models.CatalogItem, error) {
	return f.countries, f.err
}

func (f *fakeLister) ListDepartures(ctx context.Context) ([]models.CatalogItem, error) {
	return f.departures, f.err
}

func (f *fakeLister) ListRegions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	return f.regions[countryID], f.err
}

func (f *fakeLister) ListSubregions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	return f.subregions[countryID], f.err
}

func (f *fakeLister) ListHotels(ctx context.Context, countryID int) ([]models.HotelItem, error) {
	f.hotelCalls++
	return f.hotels[countryID], f.err
}

func TestSeededCatalogResolvesWithoutRefresh(t *testing.T) {
	svc := NewCatalogService(&fakeLister{})

	id, ok := svc.CountryID("Турция")
	require.True(t, ok)
	assert.Equal(t, 4, id)

	id, ok = svc.DepartureID("Питер")
	require.True(t, ok)
	assert.Equal(t, 2, id)

	id, ok = svc.DepartureID("сочи")
	require.True(t, ok)
	assert.Equal(t, 62, id)

	assert.Equal(t, "Турция", svc.CountryName(4))
}

func TestDepartureFuzzyMatchesTypo(t *testing.T) {
	svc := NewCatalogService(&fakeLister{})

	id, ok := svc.DepartureID("екатеренбург")
	require.True(t, ok, "one-letter typo should still resolve")
	assert.Equal(t, 3, id)

	_, ok = svc.DepartureID("волшебhavn")
	assert.False(t, ok)
}

func TestRefreshMergesVendorLists(t *testing.T) {
	fake := &fakeLister{
		countries:  []models.CatalogItem{{ID: 47, Name: "Греция"}},
		departures: []models.CatalogItem{{ID: 99, Name: "Пермь"}},
	}
	svc := NewCatalogService(fake)
	require.NoError(t, svc.Refresh(context.Background()))

	id, ok := svc.CountryID("греция")
	require.True(t, ok)
	assert.Equal(t, 47, id)

	id, ok = svc.DepartureID("пермь")
	require.True(t, ok)
	assert.Equal(t, 99, id)

	// Seeded entries survive a refresh.
	id, ok = svc.DepartureID("москва")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestRefreshErrorKeepsTables(t *testing.T) {
	fake := &fakeLister{err: errors.New("vendor down")}
	svc := NewCatalogService(fake)

	err := svc.Refresh(context.Background())
	require.Error(t, err)

	id, ok := svc.CountryID("Египет")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestRegionFallsBackToSubregions(t *testing.T) {
	fake := &fakeLister{
		regions: map[int][]models.CatalogItem{
			4: {{ID: 101, Name: "Анталья"}, {ID: 102, Name: "Кемер"}},
		},
		subregions: map[int][]models.CatalogItem{
			4: {{ID: 201, Name: "Белек"}},
		},
	}
	svc := NewCatalogService(fake)
	ctx := context.Background()

	id, ok := svc.RegionID(ctx, 4, "Кемер")
	require.True(t, ok)
	assert.Equal(t, 102, id)

	id, ok = svc.RegionID(ctx, 4, "Белек")
	require.True(t, ok)
	assert.Equal(t, 201, id)

	id, ok = svc.RegionID(ctx, 4, "анталь")
	require.True(t, ok, "partial region name should match")
	assert.Equal(t, 101, id)

	_, ok = svc.RegionID(ctx, 4, "Вальдемоса")
	assert.False(t, ok)
}

func TestFindHotelsMatchesCyrillicSpelling(t *testing.T) {
	fake := &fakeLister{
		hotels: map[int][]models.HotelItem{
			4: {
				{ID: 1, Name: "Rixos Premium Belek", Stars: 5},
				{ID: 2, Name: "Calista Luxury Resort", Stars: 5},
				{ID: 3, Name: "Club Hotel Sera", Stars: 4},
			},
		},
	}
	svc := NewCatalogService(fake)
	ctx := context.Background()

	found, err := svc.FindHotels(ctx, "Риксос", 4)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rixos Premium Belek", found[0].Name)

	found, err = svc.FindHotels(ctx, "calista", 4)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].ID)

	// The per-country hotel list is fetched once and then served from cache.
	_, err = svc.FindHotels(ctx, "sera", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.hotelCalls)
}

func TestNormalizeHotelQueryVariants(t *testing.T) {
	variants := normalizeHotelQuery("Риксос")

	assert.Contains(t, variants, "риксос")
	assert.Contains(t, variants, "rixos")
	assert.Contains(t, variants, "riksos")
}

func TestRatioHelpers(t *testing.T) {
	assert.Equal(t, 100, ratio("сочи", "сочи"))
	assert.GreaterOrEqual(t, ratio("екатеренбург", "екатеринбург"), fuzzyThreshold)
	assert.Less(t, ratio("москва", "казань"), fuzzyThreshold)
	assert.Equal(t, 100, partialRatio("сочи", "сочи (адлер)"))
}
