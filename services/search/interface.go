package search

import (
	"context"
	"time"

	"voyago/models"
	"voyago/services/catalog"
)

// Service runs vendor tour searches end to end: name-to-id resolution, the
// asynchronous submit/poll cycle, client-side filtering and ranking. Callers
// get at most MaxOffers offers sorted by ascending price.
type Service interface {
	// Search runs a full search for the collected trip parameters.
	// An empty offer list with a nil error is a legitimate negative result.
	Search(ctx context.Context, trip models.TripSlots) (*models.SearchResult, error)
	// FetchMore returns the next result page of an earlier search. An expired
	// request id triggers a fresh search with the same trip parameters.
	FetchMore(ctx context.Context, requestID string, trip models.TripSlots, page int) (*models.SearchResult, error)
	// ContinueSearch extends a finished search so slower operators can report
	// in, then polls the (possibly new) request id like a regular search.
	ContinueSearch(ctx context.Context, requestID string, trip models.TripSlots) (*models.SearchResult, error)
	// HotOffers fetches already-discounted near-term offers synchronously,
	// bypassing the submit/poll cycle and the exact-date requirement.
	HotOffers(ctx context.Context, trip models.TripSlots) (*models.SearchResult, error)
	// Actualize re-validates one offer's price right before a booking
	// hand-off. The returned price wins over any cached offer price.
	Actualize(ctx context.Context, tourID string) (*models.ActualizedPrice, error)
}

// Vendor is the raw tour-gateway protocol the orchestrator drives.
// TourvisorClient implements it together with catalog.Lister.
type Vendor interface {
	StartSearch(ctx context.Context, criteria models.SearchCriteria) (string, error)
	ContinueSearch(ctx context.Context, requestID string) (string, error)
	SearchStatus(ctx context.Context, requestID string) (models.SearchStatus, error)
	FetchResults(ctx context.Context, requestID string, page int) ([]models.Offer, error)
	HotTours(ctx context.Context, departureID, countryID, limit int) ([]models.Offer, error)
	ActualizeTour(ctx context.Context, tourID string) (*models.ActualizedPrice, error)
}

// DefaultSearchService implements Service against the Tourvisor gateway.
type DefaultSearchService struct {
	Vendor  Vendor
	Catalog catalog.Service

	// Poll tuning. GDS operators report slowly, so results are not fetched
	// before MinWait has elapsed unless progress already passed
	// MinProgressToFetch.
	PollInterval       time.Duration
	MaxPollAttempts    int
	MinWait            time.Duration
	MinProgressToFetch int

	MaxOffers int
}

// NewSearchService wires the orchestrator with its poll defaults.
func NewSearchService(vendor Vendor, cat catalog.Service, maxOffers int) *DefaultSearchService {
	if maxOffers <= 0 {
		maxOffers = 5
	}
	return &DefaultSearchService{
		Vendor:             vendor,
		Catalog:            cat,
		PollInterval:       2 * time.Second,
		MaxPollAttempts:    60,
		MinWait:            25 * time.Second,
		MinProgressToFetch: 70,
		MaxOffers:          maxOffers,
	}
}
