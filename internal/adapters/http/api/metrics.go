// Package api exposes the intel pipeline over HTTP: report resolution,
// cached heatmap reads, manual refreshes, and the operational endpoints.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/tourintel/pkg/metrics"
)

// NewMetricsHandler serves the pipeline's Prometheus registry.
func NewMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
