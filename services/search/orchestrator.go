package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"voyago/models"
	"voyago/utils"
)

// Search resolves the trip to vendor ids, submits, polls until the vendor
// finishes or the attempt budget runs out, and post-processes the offers.
// An expired request id is resubmitted once without surfacing to the caller.
func (s *DefaultSearchService) Search(ctx context.Context, trip models.TripSlots) (*models.SearchResult, error) {
	logger := utils.GetLogger()

	crit, err := s.resolveCriteria(ctx, trip)
	if err != nil {
		return nil, err
	}

	logger.Info("submitting tour search",
		zap.Int("country", crit.CountryID),
		zap.Int("departure", crit.DepartureID),
		zap.Int("nights", crit.NightsFrom),
		zap.Int("adults", crit.Adults),
		zap.Int("stars", crit.Stars))

	start := time.Now()
	requestID, err := s.Vendor.StartSearch(ctx, crit)
	if err != nil {
		return nil, err
	}

	offers, partial, err := s.poll(ctx, requestID)
	if errors.Is(err, ErrRequestExpired) {
		logger.Warn("request id expired mid-poll, resubmitting",
			zap.String("requestId", requestID))
		requestID, err = s.Vendor.StartSearch(ctx, crit)
		if err != nil {
			return nil, err
		}
		offers, partial, err = s.poll(ctx, requestID)
	}
	if err != nil {
		return nil, err
	}

	result := s.finalize(offers, partial, requestID, crit, trip)
	logger.Info("tour search done",
		zap.Int("found", result.TotalFound),
		zap.Int("shown", len(result.Offers)),
		zap.Bool("partial", result.Partial),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// FetchMore pulls a later result page of an earlier search. Request ids age
// out between turns; when that happens the search is simply rerun.
func (s *DefaultSearchService) FetchMore(ctx context.Context, requestID string, trip models.TripSlots, page int) (*models.SearchResult, error) {
	if requestID == "" {
		return s.Search(ctx, trip)
	}
	if page < 2 {
		page = 2
	}

	crit, err := s.resolveCriteria(ctx, trip)
	if err != nil {
		return nil, err
	}

	offers, err := s.Vendor.FetchResults(ctx, requestID, page)
	if errors.Is(err, ErrRequestExpired) {
		utils.GetLogger().Info("stored request id expired, rerunning search",
			zap.String("requestId", requestID))
		return s.Search(ctx, trip)
	}
	if err != nil {
		return nil, err
	}
	return s.finalize(offers, false, requestID, crit, trip), nil
}

// ContinueSearch extends a finished search so slower operators report in,
// then polls the resulting request id like a fresh submission.
func (s *DefaultSearchService) ContinueSearch(ctx context.Context, requestID string, trip models.TripSlots) (*models.SearchResult, error) {
	if requestID == "" {
		return s.Search(ctx, trip)
	}

	crit, err := s.resolveCriteria(ctx, trip)
	if err != nil {
		return nil, err
	}

	newID, err := s.Vendor.ContinueSearch(ctx, requestID)
	if errors.Is(err, ErrRequestExpired) {
		return s.Search(ctx, trip)
	}
	if err != nil {
		return nil, err
	}

	offers, partial, err := s.poll(ctx, newID)
	if errors.Is(err, ErrRequestExpired) {
		return s.Search(ctx, trip)
	}
	if err != nil {
		return nil, err
	}

	result := s.finalize(offers, partial, newID, crit, trip)
	result.HasMore = len(result.Offers) >= s.MaxOffers
	return result, nil
}

// HotOffers fetches discounted near-term offers synchronously. Only the
// departure city is required; an unresolvable destination just widens the
// selection to every direction.
func (s *DefaultSearchService) HotOffers(ctx context.Context, trip models.TripSlots) (*models.SearchResult, error) {
	if trip.Departure == "" {
		return nil, ErrUnknownDeparture
	}
	departureID, ok := s.Catalog.DepartureID(trip.Departure)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeparture, trip.Departure)
	}

	countryID := 0
	if trip.Destination != "" {
		if id, ok := s.Catalog.CountryID(trip.Destination); ok {
			countryID = id
		}
	}

	offers, err := s.Vendor.HotTours(ctx, departureID, countryID, s.MaxOffers)
	if err != nil {
		return nil, err
	}
	if len(offers) > s.MaxOffers {
		offers = offers[:s.MaxOffers]
	}
	for i := range offers {
		offers[i].DepartureCity = trip.Departure
	}

	utils.GetLogger().Info("hot tours fetched",
		zap.Int("departure", departureID),
		zap.Int("country", countryID),
		zap.Int("found", len(offers)))
	return &models.SearchResult{Offers: offers, TotalFound: len(offers)}, nil
}

// Actualize re-validates one offer's price. A nil result with a nil error
// means the vendor no longer lists the tour.
func (s *DefaultSearchService) Actualize(ctx context.Context, tourID string) (*models.ActualizedPrice, error) {
	price, err := s.Vendor.ActualizeTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if price == nil {
		utils.GetLogger().Info("tour gone on actualize", zap.String("tourId", tourID))
		return nil, nil
	}
	if price.PriceChanged {
		utils.GetLogger().Info("tour price changed on actualize",
			zap.String("tourId", tourID),
			zap.Int("was", price.OriginalPrice),
			zap.Int("now", price.Price))
	}
	return price, nil
}

// resolveCriteria maps user-entered names to vendor ids. Resolution never
// guesses: an unknown country or departure city is an error, and a named
// hotel that matches nothing stops the search instead of degrading it.
func (s *DefaultSearchService) resolveCriteria(ctx context.Context, trip models.TripSlots) (models.SearchCriteria, error) {
	if trip.Destination == "" && trip.HotelName == "" {
		return models.SearchCriteria{}, ErrUnknownCountry
	}
	if trip.Departure == "" {
		return models.SearchCriteria{}, ErrUnknownDeparture
	}

	countryID := 0
	if trip.Destination != "" {
		id, ok := s.Catalog.CountryID(trip.Destination)
		if !ok {
			return models.SearchCriteria{}, fmt.Errorf("%w: %q", ErrUnknownCountry, trip.Destination)
		}
		countryID = id
	}

	departureID, ok := s.Catalog.DepartureID(trip.Departure)
	if !ok {
		return models.SearchCriteria{}, fmt.Errorf("%w: %q", ErrUnknownDeparture, trip.Departure)
	}

	var hotelIDs, regionIDs []int
	if trip.HotelName != "" {
		hotels, err := s.Catalog.FindHotels(ctx, trip.HotelName, countryID)
		if err != nil {
			return models.SearchCriteria{}, fmt.Errorf("resolve hotel %q: %w", trip.HotelName, err)
		}
		if len(hotels) == 0 {
			return models.SearchCriteria{}, fmt.Errorf("%w: %q", ErrHotelNotFound, trip.HotelName)
		}
		for _, h := range hotels {
			hotelIDs = append(hotelIDs, h.ID)
		}
		if countryID == 0 {
			countryID = hotels[0].CountryID
		}
		regionIDs = sharedRegion(hotels)
	}

	return buildCriteria(trip, countryID, departureID, hotelIDs, regionIDs), nil
}

// poll drives the status loop. Results are not fetched before MinWait unless
// the vendor is nearly done; a finished state triggers exactly one final
// fetch. Exhausting the budget returns whatever intermediate fetch produced,
// marked partial, or ErrSearchTimeout when nothing was ever fetched.
func (s *DefaultSearchService) poll(ctx context.Context, requestID string) ([]models.Offer, bool, error) {
	logger := utils.GetLogger()

	var (
		offers  []models.Offer
		fetched bool
		faults  int
	)
	start := time.Now()

	for attempt := 1; attempt <= s.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(s.PollInterval):
		}

		status, err := s.Vendor.SearchStatus(ctx, requestID)
		if err != nil {
			if errors.Is(err, ErrRequestExpired) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, false, err
			}
			faults++
			if faults >= maxTransportRetries {
				return nil, false, err
			}
			continue
		}
		faults = 0

		logger.Debug("search poll",
			zap.String("requestId", requestID),
			zap.Int("attempt", attempt),
			zap.String("state", status.State),
			zap.Int("progress", status.Progress))

		// GDS operators fill in slowly: early pages are misleadingly thin, so
		// nothing is fetched before MinWait unless the vendor is nearly done.
		if time.Since(start) < s.MinWait && status.Progress < s.MinProgressToFetch && !status.Finished() {
			continue
		}

		if status.Finished() {
			final, err := s.Vendor.FetchResults(ctx, requestID, 1)
			if err != nil {
				if errors.Is(err, ErrRequestExpired) {
					return nil, false, err
				}
				if fetched {
					return offers, true, nil
				}
				return nil, false, err
			}
			if len(final) > 0 {
				offers = final
			}
			// Finished with zero offers is a legitimate negative result.
			return offers, false, nil
		}

		if status.Progress >= s.MinProgressToFetch && !fetched {
			page, err := s.Vendor.FetchResults(ctx, requestID, 1)
			if errors.Is(err, ErrRequestExpired) {
				return nil, false, err
			}
			if err == nil && len(page) > 0 {
				offers = page
				fetched = true
			}
		}
	}

	if !fetched {
		return nil, false, ErrSearchTimeout
	}
	return offers, true, nil
}

// finalize applies the client-side guarantees the gateway does not: offers
// from the wrong country or outside the requested hotel set are dropped, the
// star rating is enforced as a hard minimum, and the rest is sorted by price
// and capped.
func (s *DefaultSearchService) finalize(offers []models.Offer, partial bool, requestID string, crit models.SearchCriteria, trip models.TripSlots) *models.SearchResult {
	kept := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if crit.CountryID > 0 && o.CountryID > 0 && o.CountryID != crit.CountryID {
			continue
		}
		if len(crit.HotelIDs) > 0 && o.HotelID > 0 && !slices.Contains(crit.HotelIDs, o.HotelID) {
			continue
		}
		if crit.Stars > 0 && o.HotelStars < crit.Stars {
			continue
		}
		if o.Country == "" {
			o.Country = s.Catalog.CountryName(crit.CountryID)
		}
		o.DepartureCity = trip.Departure
		kept = append(kept, o)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Price < kept[j].Price })

	total := len(kept)
	if len(kept) > s.MaxOffers {
		kept = kept[:s.MaxOffers]
	}

	return &models.SearchResult{
		Offers:     kept,
		TotalFound: total,
		RequestID:  requestID,
		Partial:    partial,
		HasMore:    total > len(kept),
	}
}

// sharedRegion narrows a hotel search to one region when every matched hotel
// sits in it; mixed matches leave the search country-wide.
func sharedRegion(hotels []models.HotelItem) []int {
	region := 0
	for _, h := range hotels {
		if h.RegionID == 0 {
			continue
		}
		if region == 0 {
			region = h.RegionID
			continue
		}
		if h.RegionID != region {
			return nil
		}
	}
	if region == 0 {
		return nil
	}
	return []int{region}
}
