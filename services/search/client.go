package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"voyago/models"
	"voyago/utils"
)

const (
	maxTransportRetries = 3
	transportRetryDelay = 500 * time.Millisecond
)

// TourvisorClient talks to the Tourvisor XML gateway in JSON mode. It
// implements both the Vendor search protocol and catalog.Lister, since the
// reference dictionaries live on the same gateway.
type TourvisorClient struct {
	BaseURL   string
	AuthLogin string
	AuthPass  string
	HTTP      *http.Client
}

// NewTourvisorClient builds a client for the gateway. Credentials may be
// empty against a mock backend.
func NewTourvisorClient(baseURL, authLogin, authPass string, timeout time.Duration) *TourvisorClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TourvisorClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		AuthLogin: authLogin,
		AuthPass:  authPass,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// request performs one gateway GET with auth and format=json attached,
// retrying transport-level failures a bounded number of times. The response
// body comes back BOM-stripped and ready to decode.
func (c *TourvisorClient) request(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	logger := utils.GetLogger()

	if c.AuthLogin != "" && c.AuthPass != "" {
		q.Set("authlogin", c.AuthLogin)
		q.Set("authpass", c.AuthPass)
	}
	q.Set("format", "json")
	fullURL := c.BaseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxTransportRetries; attempt++ {
		body, retryable, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		logger.Warn("tourvisor request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(transportRetryDelay * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrVendorUnavailable, lastErr)
}

// doOnce reports whether its failure is worth another attempt.
func (c *TourvisorClient) doOnce(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	// The gateway prefixes JSON with a UTF-8 BOM.
	body = bytes.TrimPrefix(bytes.TrimSpace(body), []byte("\xef\xbb\xbf"))
	return body, false, nil
}

// ---- search protocol ----

// StartSearch submits the criteria and returns the opaque request id used to
// poll for results.
func (c *TourvisorClient) StartSearch(ctx context.Context, criteria models.SearchCriteria) (string, error) {
	body, err := c.request(ctx, "search.php", searchValues(criteria))
	if err != nil {
		return "", err
	}

	var env submitEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if env.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrVendorUnavailable, env.Error)
	}
	id := env.requestID()
	if id == "" {
		return "", fmt.Errorf("%w: search response carried no request id", ErrVendorUnavailable)
	}
	return id, nil
}

// ContinueSearch asks the gateway to keep querying operators for an already
// finished request. The gateway may mint a new request id or reuse the old.
func (c *TourvisorClient) ContinueSearch(ctx context.Context, requestID string) (string, error) {
	q := url.Values{}
	q.Set("continue", requestID)
	body, err := c.request(ctx, "search.php", q)
	if err != nil {
		return "", err
	}

	var env submitEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode continue response: %w", err)
	}
	if env.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRequestExpired, env.Error)
	}
	if id := env.requestID(); id != "" {
		return id, nil
	}
	return requestID, nil
}

// SearchStatus reads one progress snapshot. A vendor-reported error means the
// request id is no longer being served.
func (c *TourvisorClient) SearchStatus(ctx context.Context, requestID string) (models.SearchStatus, error) {
	q := url.Values{}
	q.Set("type", "status")
	q.Set("requestid", requestID)
	body, err := c.request(ctx, "result.php", q)
	if err != nil {
		return models.SearchStatus{}, err
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.SearchStatus{}, fmt.Errorf("decode status response: %w", err)
	}
	if env.Error != "" {
		return models.SearchStatus{}, fmt.Errorf("%w: %s", ErrRequestExpired, env.Error)
	}
	st := env.Data.Status
	state := st.State
	if state == "" {
		state = "unknown"
	}
	return models.SearchStatus{
		RequestID:      requestID,
		State:          state,
		Progress:       int(st.Progress),
		OperatorsDone:  int(st.Done),
		OperatorsTotal: int(st.Total),
	}, nil
}

// FetchResults pulls one page of offers for a request id.
func (c *TourvisorClient) FetchResults(ctx context.Context, requestID string, page int) ([]models.Offer, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("type", "result")
	q.Set("requestid", requestID)
	q.Set("page", strconv.Itoa(page))
	q.Set("onpage", strconv.Itoa(resultsPerPage))
	body, err := c.request(ctx, "result.php", q)
	if err != nil {
		return nil, err
	}

	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode result response: %w", err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRequestExpired, env.Error)
	}

	now := time.Now()
	offers := make([]models.Offer, 0, len(env.Data.Result.Hotel))
	for _, h := range env.Data.Result.Hotel {
		if offer, ok := offerFromHotelRow(h, now); ok {
			offers = append(offers, offer)
		}
	}
	return offers, nil
}

// HotTours fetches discounted near-term offers synchronously.
func (c *TourvisorClient) HotTours(ctx context.Context, departureID, countryID, limit int) ([]models.Offer, error) {
	q := url.Values{}
	q.Set("city", strconv.Itoa(departureID))
	q.Set("items", strconv.Itoa(limit))
	if countryID > 0 {
		q.Set("country", strconv.Itoa(countryID))
	}
	body, err := c.request(ctx, "hottours.php", q)
	if err != nil {
		return nil, err
	}

	var env hotToursEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode hot tours response: %w", err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrVendorUnavailable, env.Error)
	}

	now := time.Now()
	offers := make([]models.Offer, 0, len(env.HotTours.Tour))
	for _, t := range env.HotTours.Tour {
		if offer, ok := offerFromHotTour(t, now); ok {
			offers = append(offers, offer)
		}
	}
	return offers, nil
}

// ActualizeTour re-checks one tour's price and availability.
func (c *TourvisorClient) ActualizeTour(ctx context.Context, tourID string) (*models.ActualizedPrice, error) {
	q := url.Values{}
	q.Set("tourid", tourID)
	body, err := c.request(ctx, "actualize.php", q)
	if err != nil {
		return nil, err
	}

	var env actualizeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode actualize response: %w", err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrVendorUnavailable, env.Error)
	}

	tour := env.Data.Tour
	if int(tour.Price) == 0 {
		return nil, nil
	}

	current := int(tour.Price)
	original := int(tour.OriginalPrice)
	if original == 0 {
		original = current
	}
	currency := tour.Currency
	if currency == "" {
		currency = "RUB"
	}
	return &models.ActualizedPrice{
		TourID:        tourID,
		Price:         current,
		OriginalPrice: original,
		PriceChanged:  current != original,
		Available:     tour.Available == "" || tour.Available == "1",
		Currency:      currency,
	}, nil
}

// ---- reference dictionaries (catalog.Lister) ----

func (c *TourvisorClient) listDictionary(ctx context.Context, listType string, extra url.Values) (*listEnvelope, error) {
	q := url.Values{}
	q.Set("type", listType)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	body, err := c.request(ctx, "list.php", q)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", listType, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrVendorUnavailable, env.Error)
	}
	return &env, nil
}

func (c *TourvisorClient) ListCountries(ctx context.Context) ([]models.CatalogItem, error) {
	env, err := c.listDictionary(ctx, "country", nil)
	if err != nil {
		return nil, err
	}
	rows := env.Lists.Countries.Country
	if len(rows) == 0 {
		rows = env.Data.Country
	}
	return catalogItems(rows), nil
}

func (c *TourvisorClient) ListDepartures(ctx context.Context) ([]models.CatalogItem, error) {
	env, err := c.listDictionary(ctx, "departure", nil)
	if err != nil {
		return nil, err
	}
	rows := env.Lists.Departures.Departure
	if len(rows) == 0 {
		rows = env.Data.Departure
	}
	return catalogItems(rows), nil
}

func (c *TourvisorClient) ListRegions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	extra := url.Values{}
	extra.Set("regcountry", strconv.Itoa(countryID))
	env, err := c.listDictionary(ctx, "region", extra)
	if err != nil {
		return nil, err
	}
	rows := env.Lists.Regions.Region
	if len(rows) == 0 {
		rows = env.Data.Region
	}
	return catalogItems(rows), nil
}

func (c *TourvisorClient) ListSubregions(ctx context.Context, countryID int) ([]models.CatalogItem, error) {
	extra := url.Values{}
	extra.Set("regcountry", strconv.Itoa(countryID))
	env, err := c.listDictionary(ctx, "subregion", extra)
	if err != nil {
		return nil, err
	}
	rows := env.Lists.Subregions.Subregion
	if len(rows) == 0 {
		rows = env.Data.Subregion
	}
	return catalogItems(rows), nil
}

// ListHotels loads the hotel dictionary for one country. The gateway keys
// this list by "hotcountry", not "countryid".
func (c *TourvisorClient) ListHotels(ctx context.Context, countryID int) ([]models.HotelItem, error) {
	extra := url.Values{}
	extra.Set("hotcountry", strconv.Itoa(countryID))
	env, err := c.listDictionary(ctx, "hotel", extra)
	if err != nil {
		return nil, err
	}
	rows := env.Lists.Hotels.Hotel
	if len(rows) == 0 {
		rows = env.Data.Hotel
	}

	hotels := make([]models.HotelItem, 0, len(rows))
	for _, r := range rows {
		if int(r.ID) == 0 || r.Name == "" {
			continue
		}
		hotels = append(hotels, models.HotelItem{
			ID:        int(r.ID),
			Name:      r.Name,
			Stars:     int(r.Stars),
			Rating:    float64(r.Rating),
			CountryID: countryID,
			RegionID:  int(r.RegionID),
		})
	}
	return hotels, nil
}
