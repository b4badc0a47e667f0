package upstream

import "errors"

// Sentinel kinds for upstream failures. Adapters wrap these with
// provider context; domain stages check them with errors.Is and
// degrade to warnings.
var (
	// ErrUpstreamUnavailable covers network failures, 5xx responses,
	// and an open circuit breaker.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse covers undecodable or shape-mismatched
	// payloads.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrRateLimited covers HTTP 429 responses that survived the
	// retry budget.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrTimeout covers context deadlines hit while calling upstream.
	ErrTimeout = errors.New("upstream timeout")
)
