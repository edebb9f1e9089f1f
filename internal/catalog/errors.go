package catalog

import "errors"

var (
	// ErrNoFetcher indicates the catalog has nothing to load from.
	ErrNoFetcher = errors.New("catalog has no fetcher")

	// ErrBadStatus indicates the catalog service answered with a non-2xx status.
	ErrBadStatus = errors.New("catalog service returned unexpected status")

	// ErrInvalidPayload indicates a catalog document could not be decoded.
	ErrInvalidPayload = errors.New("invalid catalog payload")

	// ErrAllFailed indicates every fetcher of a merged source failed.
	ErrAllFailed = errors.New("all catalog sources failed")
)
