// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import "net/http"

// healthResponse is the liveness read shape.
type healthResponse struct {
	Status string `json:"status"`
}

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth handles GET /healthz requests. Liveness only: readiness
// shows up in /stats as the started flag.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
