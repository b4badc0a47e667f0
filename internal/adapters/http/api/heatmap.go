// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/okian/tourintel/internal/domain/model"
)

// HeatmapHandler handles cached heatmap reads.
type HeatmapHandler struct {
	deps HeatmapDependencies
}

// NewHeatmapHandler creates a new heatmap handler.
func NewHeatmapHandler(deps HeatmapDependencies) *HeatmapHandler {
	return &HeatmapHandler{deps: deps}
}

// heatmapResponse is the read shape for GET /api/v1/heatmap.
type heatmapResponse struct {
	Artist string             `json:"artist"`
	Region string             `json:"region,omitempty"`
	Cities []model.CityWeight `json:"cities"`
}

// HandleGetHeatmap handles GET /api/v1/heatmap?artist=NAME&region=CODE
// requests. The ranking serves from cache only; 404 means no pipeline
// run has computed one for the artist yet.
func (h *HeatmapHandler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	artist, region, err := artistParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_artist", err)
		return
	}
	cities, ok := h.deps.CachedHeatmap(r.Context(), artist, region)
	if !ok {
		writeError(w, http.StatusNotFound, "heatmap_not_found",
			errors.New("no heatmap computed for artist"))
		return
	}
	writeJSON(w, http.StatusOK, heatmapResponse{
		Artist: artist,
		Region: region.String(),
		Cities: cities,
	})
}
