package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/tourintel/internal/adapters/upstream"
	service "github.com/okian/tourintel/internal/app"
	"github.com/okian/tourintel/internal/refresh"
)

// Sentinel kinds for API request validation.
var (
	ErrMissingArtist = errors.New("missing artist parameter")
	ErrBadRequest    = errors.New("bad request")
)

// statusFor maps service and upstream errors onto an HTTP status code
// and a stable machine-readable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery), errors.Is(err, ErrMissingArtist):
		return http.StatusBadRequest, "missing_artist"
	case errors.Is(err, refresh.ErrRefreshInFlight):
		return http.StatusConflict, "refresh_in_flight"
	case errors.Is(err, upstream.ErrRateLimited):
		return http.StatusBadGateway, "upstream_rate_limited"
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, upstream.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
