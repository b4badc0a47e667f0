// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/okian/tourintel/internal/domain/types"
)

// refreshRequest mirrors the OpenAPI schema for POST /api/v1/refresh.
type refreshRequest struct {
	Artist string `json:"artist"`
	Region string `json:"region"`
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandlePostRefresh handles POST /api/v1/refresh requests. The artist
// arrives either as a JSON body or as query parameters; a non-empty
// body wins. A refresh already holding the key answers with the cached
// report, or 409 when there is nothing cached yet.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req refreshRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	artist := strings.TrimSpace(req.Artist)
	var region types.Region
	if strings.TrimSpace(req.Region) != "" {
		region = types.ParseRegion(req.Region)
	}
	if artist == "" {
		var err error
		artist, region, err = artistParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing_artist", err)
			return
		}
	}

	intel, err := h.deps.ForceRefresh(r.Context(), artist, region)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, intel)
}
