// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import (
	"net/http"
)

// IntelHandler handles intel report requests.
type IntelHandler struct {
	deps IntelDependencies
}

// NewIntelHandler creates a new intel handler.
func NewIntelHandler(deps IntelDependencies) *IntelHandler {
	return &IntelHandler{deps: deps}
}

// HandleGetIntel handles GET /api/v1/intel?artist=NAME&region=CODE
// requests. Cached reports serve immediately; a cold artist computes
// synchronously within the request.
func (h *IntelHandler) HandleGetIntel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	artist, region, err := artistParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_artist", err)
		return
	}
	intel, err := h.deps.ResolveIntel(r.Context(), artist, region)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, intel)
}
