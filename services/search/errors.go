package search

import "errors"

// Sentinel errors for errors.Is checks at the dialogue boundary.
var (
	// ErrUnknownCountry means the destination name resolved to no vendor id.
	// The search never falls back to a default country.
	ErrUnknownCountry = errors.New("search: unknown destination country")

	// ErrUnknownDeparture means the departure city resolved to no vendor id.
	// The search never silently substitutes Moscow.
	ErrUnknownDeparture = errors.New("search: unknown departure city")

	// ErrHotelNotFound means a specific hotel was requested but nothing in
	// the catalog matched. A hotel search never degrades to a generic one.
	ErrHotelNotFound = errors.New("search: requested hotel not found")

	// ErrRequestExpired means the vendor no longer serves the request id.
	// The orchestrator resubmits once; callers never see this directly.
	ErrRequestExpired = errors.New("search: request id expired")

	// ErrSearchTimeout means the poll budget ran out before any results
	// could be fetched.
	ErrSearchTimeout = errors.New("search: timed out waiting for results")

	// ErrVendorUnavailable wraps transport failures that survived retrying.
	ErrVendorUnavailable = errors.New("search: vendor unavailable")

	// ErrUnauthorized means the gateway rejected the API credentials.
	ErrUnauthorized = errors.New("search: vendor rejected credentials")
)
