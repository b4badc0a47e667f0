package service

import "errors"

// Service-level sentinel errors. The HTTP layer maps these onto
// status codes; everything else checks them with errors.Is.
var (
	// ErrNotStarted rejects operations on a service that was never
	// started or has been stopped.
	ErrNotStarted = errors.New("service not started")

	// ErrEmptyQuery rejects requests carrying no artist query.
	ErrEmptyQuery = errors.New("empty artist query")

	// ErrProviderDisabled marks calls routed to a provider the
	// operator left without credentials.
	ErrProviderDisabled = errors.New("provider not configured")
)
