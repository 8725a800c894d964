package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"voyago/models"
	"voyago/utils"
)

// popularCountryIDs is the hotel search scope when no country is known yet.
var popularCountryIDs = []int{4, 1, 9, 2, 8} // Турция, Египет, ОАЭ, Таиланд, Мальдивы

// DefaultCatalogService keeps the vendor reference lists in memory. Countries
// and departures are seeded with known IDs so name resolution works before
// the first vendor sync; regions, subregions and hotels load lazily per
// country.
type DefaultCatalogService struct {
	Vendor Lister

	mu          sync.RWMutex
	countries   map[string]int
	countryName map[int]string
	departures  map[string]int
	regions     map[int][]models.CatalogItem
	subregions  map[int][]models.CatalogItem
	hotels      map[int][]models.HotelItem
}

func NewCatalogService(vendor Lister) *DefaultCatalogService {
	s := &DefaultCatalogService{
		Vendor:      vendor,
		countries:   make(map[string]int),
		countryName: make(map[int]string),
		departures:  make(map[string]int),
		regions:     make(map[int][]models.CatalogItem),
		subregions:  make(map[int][]models.CatalogItem),
		hotels:      make(map[int][]models.HotelItem),
	}
	s.seedDefaults()
	return s
}

// seedDefaults installs the known catalog IDs used until the vendor lists
// are synced, and kept as extra lookup keys afterwards.
func (s *DefaultCatalogService) seedDefaults() {
	for id, name := range map[int]string{
		1: "Египет", 2: "Таиланд", 4: "Турция", 8: "Мальдивы", 9: "ОАЭ",
	} {
		s.countries[strings.ToLower(name)] = id
		s.countryName[id] = name
	}

	for name, id := range map[string]int{
		"москва": 1, "мск": 1, "москвы": 1,
		"санкт-петербург": 2, "спб": 2, "питер": 2, "петербург": 2,
		"екатеринбург": 3, "екб": 3,
		"новосибирск": 8, "новосиб": 8,
		"казань": 10, "казани": 10,
		"сочи": 62, "сочи (адлер)": 62, "адлер": 62,
		"краснодар": 11,
	} {
		s.departures[name] = id
	}
}

// Refresh reloads countries and departures concurrently. A partial failure
// leaves the previous (or seeded) tables in place.
func (s *DefaultCatalogService) Refresh(ctx context.Context) error {
	logger := utils.GetLogger()

	var countries, departures []models.CatalogItem
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		countries, err = s.Vendor.ListCountries(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		departures, err = s.Vendor.ListDepartures(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to refresh vendor catalogs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range countries {
		if c.ID == 0 || c.Name == "" {
			continue
		}
		s.countries[strings.ToLower(c.Name)] = c.ID
		s.countryName[c.ID] = c.Name
	}
	for _, d := range departures {
		if d.ID == 0 || d.Name == "" {
			continue
		}
		s.departures[strings.ToLower(d.Name)] = d.ID
	}
	s.regions = make(map[int][]models.CatalogItem)
	s.subregions = make(map[int][]models.CatalogItem)
	s.hotels = make(map[int][]models.HotelItem)

	logger.Info("Vendor catalogs refreshed",
		zap.Int("countries", len(countries)),
		zap.Int("departures", len(departures)))
	return nil
}

func (s *DefaultCatalogService) CountryID(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveName(name, s.countries)
}

func (s *DefaultCatalogService) CountryName(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countryName[id]
}

func (s *DefaultCatalogService) DepartureID(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveName(name, s.departures)
}

// RegionID checks the country's regions first, then its subregions, exact
// match before two-way substring match in each.
func (s *DefaultCatalogService) RegionID(ctx context.Context, countryID int, name string) (int, bool) {
	if name == "" || countryID == 0 {
		return 0, false
	}
	lower := strings.ToLower(strings.TrimSpace(name))

	regions, err := s.loadRegions(ctx, countryID)
	if err == nil {
		if id, ok := matchItem(lower, regions); ok {
			return id, true
		}
	}
	subregions, err := s.loadSubregions(ctx, countryID)
	if err == nil {
		if id, ok := matchItem(lower, subregions); ok {
			return id, true
		}
	}
	return 0, false
}

// FindHotels matches every query variant (raw, alias-replaced, transliterated)
// as a substring of the country's hotel names. With no country it scans the
// popular destinations.
func (s *DefaultCatalogService) FindHotels(ctx context.Context, query string, countryID int) ([]models.HotelItem, error) {
	variants := normalizeHotelQuery(query)
	if len(variants) == 0 {
		return nil, nil
	}

	countryIDs := []int{countryID}
	if countryID == 0 {
		countryIDs = popularCountryIDs
	}

	var found []models.HotelItem
	seen := make(map[int]bool)
	for _, cid := range countryIDs {
		hotels, err := s.loadHotels(ctx, cid)
		if err != nil {
			return found, err
		}
		for _, h := range hotels {
			if seen[h.ID] {
				continue
			}
			lower := strings.ToLower(h.Name)
			for _, v := range variants {
				if strings.Contains(lower, v) {
					found = append(found, h)
					seen[h.ID] = true
					break
				}
			}
		}
	}
	return found, nil
}

func (s *DefaultCatalogService) loadRegions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	s.mu.RLock()
	cached, ok := s.regions[countryID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	items, err := s.Vendor.ListRegions(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions for country %d: %w", countryID, err)
	}
	s.mu.Lock()
	s.regions[countryID] = items
	s.mu.Unlock()
	return items, nil
}

func (s *DefaultCatalogService) loadSubregions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	s.mu.RLock()
	cached, ok := s.subregions[countryID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	items, err := s.Vendor.ListSubregions(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subregions for country %d: %w", countryID, err)
	}
	s.mu.Lock()
	s.subregions[countryID] = items
	s.mu.Unlock()
	return items, nil
}

func (s *DefaultCatalogService) loadHotels(ctx context.Context, countryID int) ([]models.HotelItem, error) {
	s.mu.RLock()
	cached, ok := s.hotels[countryID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	items, err := s.Vendor.ListHotels(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotels for country %d: %w", countryID, err)
	}
	s.mu.Lock()
	s.hotels[countryID] = items
	s.mu.Unlock()
	return items, nil
}

// resolveName tries exact lookup, then two-way substring match, then fuzzy
// match against the table keys.
func resolveName(name string, table map[string]int) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return 0, false
	}
	if id, ok := table[lower]; ok {
		return id, true
	}
	if key, ok := substringKey(lower, table); ok {
		return table[key], true
	}
	if key, ok := fuzzyKey(lower, table); ok {
		return table[key], true
	}
	return 0, false
}

func matchItem(lower string, items []models.CatalogItem) (int, bool) {
	for _, it := range items {
		if strings.ToLower(it.Name) == lower {
			return it.ID, true
		}
	}
	for _, it := range items {
		n := strings.ToLower(it.Name)
		if strings.Contains(n, lower) || strings.Contains(lower, n) {
			return it.ID, true
		}
	}
	return 0, false
}
