// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import (
	"context"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
)

// IntelDependencies resolves intel reports.
type IntelDependencies interface {
	ResolveIntel(ctx context.Context, query string, region types.Region) (model.IntelReport, error)
}

// HeatmapDependencies serves cached city rankings.
type HeatmapDependencies interface {
	CachedHeatmap(ctx context.Context, query string, region types.Region) ([]model.CityWeight, bool)
}

// RefreshDependencies recomputes reports on demand.
type RefreshDependencies interface {
	ForceRefresh(ctx context.Context, query string, region types.Region) (model.IntelReport, error)
}

// StatsProvider exposes service runtime counters.
type StatsProvider interface {
	Stats(ctx context.Context) map[string]any
}

// Dependencies bundles everything the HTTP layer consumes. The service
// façade implements it directly; tests substitute narrow mocks.
type Dependencies interface {
	IntelDependencies
	HeatmapDependencies
	RefreshDependencies
	StatsProvider
}

// Server wires HTTP routes for the intel API.
type Server struct {
	intelHandler   *IntelHandler
	heatmapHandler *HeatmapHandler
	refreshHandler *RefreshHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		intelHandler:   NewIntelHandler(deps),
		heatmapHandler: NewHeatmapHandler(deps),
		refreshHandler: NewRefreshHandler(deps),
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		metricsHandler: NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux. The metrics endpoint stays
// outside the middleware so scrapes do not count themselves.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/intel", MetricsMiddleware(s.intelHandler.HandleGetIntel, "intel"))
	mux.HandleFunc("/api/v1/heatmap", MetricsMiddleware(s.heatmapHandler.HandleGetHeatmap, "heatmap"))
	mux.HandleFunc("/api/v1/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", s.metricsHandler)
}

// artistParams extracts the artist query and the optional region from
// the request query string.
func artistParams(r *http.Request) (string, types.Region, error) {
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if artist == "" {
		return "", "", ErrMissingArtist
	}
	var region types.Region
	if raw := r.URL.Query().Get("region"); strings.TrimSpace(raw) != "" {
		region = types.ParseRegion(raw)
	}
	return artist, region, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
