// Package metrics provides Prometheus metrics for the touring demand intelligence service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Breaker state values reported by UpdateBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager manages all Prometheus metrics for the tourintel service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline Metrics - What really matters for an intelligence pipeline
	pipelineRuns        prometheus.Counter
	pipelineRunErrors   prometheus.Counter
	pipelineRunDuration prometheus.Histogram
	stageLatency        *prometheus.HistogramVec
	stageWarnings       *prometheus.CounterVec
	reportsAssembled    prometheus.Counter

	// Scoring Metrics
	scoresComputed  prometheus.Counter
	tierAssignments *prometheus.CounterVec
	ratingsComputed prometheus.Counter
	heatmapFallback prometheus.Counter
	resolutions     *prometheus.CounterVec

	// Upstream Metrics - Provider call health
	upstreamRequests    *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	upstreamRetries     *prometheus.CounterVec
	upstreamRateLimited *prometheus.CounterVec
	breakerState        *prometheus.GaugeVec
	breakerTransitions  *prometheus.CounterVec

	// Cache Metrics
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec

	// Refresh Metrics - Background freshness maintenance
	refreshAttempts prometheus.Counter
	refreshFailures prometheus.Counter
	refreshSkipped  prometheus.Counter
	refreshInFlight prometheus.Gauge
	sweepRuns       prometheus.Counter

	// Queue Metrics - Refresh task queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - Refresh worker performance
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Notification Metrics
	notificationsSent  prometheus.Counter
	notificationErrors prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tourintel",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Pipeline Metrics - End-to-end run health
	m.pipelineRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of full pipeline runs",
	})

	m.pipelineRunErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_errors_total",
		Help:      "Total number of pipeline runs that produced warnings or degraded stages",
	})

	m.pipelineRunDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of full pipeline run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Per-stage latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.stageWarnings = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_warnings_total",
			Help:      "Total number of stage-level degradations recorded as report warnings",
		},
		[]string{"stage"},
	)

	m.reportsAssembled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_assembled_total",
		Help:      "Total number of intelligence reports assembled",
	})

	// Scoring Metrics
	m.scoresComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_computed_total",
		Help:      "Total number of sellout probability scores computed",
	})

	m.tierAssignments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tier_assignments_total",
			Help:      "Total number of demand tier assignments by tier",
		},
		[]string{"tier"},
	)

	m.ratingsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ratings_computed_total",
		Help:      "Total number of artist ratings computed",
	})

	m.heatmapFallback = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "heatmap_fallbacks_total",
		Help:      "Total number of heatmap computations served from the static market prior",
	})

	m.resolutions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "identity_resolutions_total",
			Help:      "Total number of identity resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// Upstream Metrics - Provider call health
	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream provider requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	m.upstreamDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_request_duration_milliseconds",
			Help:      "Upstream provider request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"provider"},
	)

	m.upstreamRetries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_retries_total",
			Help:      "Total number of upstream request retries by provider",
		},
		[]string{"provider"},
	)

	m.upstreamRateLimited = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_rate_limited_total",
			Help:      "Total number of upstream responses rejected for rate limiting",
		},
		[]string{"provider"},
	)

	m.breakerState = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "breaker_state",
			Help:      "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	m.breakerTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "breaker_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"provider", "state"},
	)

	// Cache Metrics
	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits by cache",
		},
		[]string{"cache"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses by cache",
		},
		[]string{"cache"},
	)

	m.cacheEvictions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_evictions_total",
			Help:      "Total number of cache entries evicted by TTL expiry",
		},
		[]string{"cache"},
	)

	m.cacheEntries = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_entries",
			Help:      "Current number of live cache entries by cache",
		},
		[]string{"cache"},
	)

	// Refresh Metrics - Background freshness maintenance
	m.refreshAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_attempts_total",
		Help:      "Total number of refresh attempts started",
	})

	m.refreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failures_total",
		Help:      "Total number of refresh attempts that failed and kept the old entry",
	})

	m.refreshSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_skipped_total",
		Help:      "Total number of refresh attempts skipped because one was already in flight",
	})

	m.refreshInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_in_flight",
		Help:      "Current number of refresh units in flight",
	})

	m.sweepRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_runs_total",
		Help:      "Total number of staleness sweep passes",
	})

	// Queue Metrics - Refresh task queue performance
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the refresh task queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum refresh task queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of refresh tasks enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of refresh tasks dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	// Worker Metrics - Refresh worker performance
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of refresh workers (processing capacity)",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of workers currently processing a refresh task",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker refresh processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Notification Metrics
	m.notificationsSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_sent_total",
		Help:      "Total number of alert notifications delivered",
	})

	m.notificationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_errors_total",
		Help:      "Total number of alert notification delivery failures",
	})
}

// RecordPipelineRun increments the pipeline runs counter.
func RecordPipelineRun() {
	globalManager.pipelineRuns.Inc()
}

// RecordPipelineRunError increments the degraded-run counter.
func RecordPipelineRunError() {
	globalManager.pipelineRunErrors.Inc()
}

// RecordPipelineRunDuration records full run duration in milliseconds.
func RecordPipelineRunDuration(latencyMs float64) {
	globalManager.pipelineRunDuration.Observe(latencyMs)
}

// RecordStageLatency records a single stage's latency in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordStageWarning increments the warning counter for a stage.
func RecordStageWarning(stage string) {
	globalManager.stageWarnings.WithLabelValues(stage).Inc()
}

// RecordReportAssembled increments the assembled reports counter.
func RecordReportAssembled() {
	globalManager.reportsAssembled.Inc()
}

// RecordScoreComputed increments the sellout scores counter.
func RecordScoreComputed() {
	globalManager.scoresComputed.Inc()
}

// RecordTierAssignment increments the tier counter for the given tier label.
func RecordTierAssignment(tier string) {
	globalManager.tierAssignments.WithLabelValues(tier).Inc()
}

// RecordRatingComputed increments the artist ratings counter.
func RecordRatingComputed() {
	globalManager.ratingsComputed.Inc()
}

// RecordHeatmapFallback increments the static-prior fallback counter.
func RecordHeatmapFallback() {
	globalManager.heatmapFallback.Inc()
}

// RecordResolution increments the identity resolution counter by outcome.
func RecordResolution(outcome string) {
	globalManager.resolutions.WithLabelValues(outcome).Inc()
}

// Upstream Metrics Functions.

// RecordUpstreamRequest records an upstream call by provider and outcome.
func RecordUpstreamRequest(provider, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordUpstreamDuration records upstream call duration in milliseconds.
func RecordUpstreamDuration(provider string, latencyMs float64) {
	globalManager.upstreamDuration.WithLabelValues(provider).Observe(latencyMs)
}

// RecordUpstreamRetry increments the retry counter for a provider.
func RecordUpstreamRetry(provider string) {
	globalManager.upstreamRetries.WithLabelValues(provider).Inc()
}

// RecordUpstreamRateLimited increments the rate-limited counter for a provider.
func RecordUpstreamRateLimited(provider string) {
	globalManager.upstreamRateLimited.WithLabelValues(provider).Inc()
}

// UpdateBreakerState sets the breaker state gauge for a provider.
func UpdateBreakerState(provider string, state int) {
	globalManager.breakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordBreakerTransition increments the breaker transition counter.
func RecordBreakerTransition(provider, state string) {
	globalManager.breakerTransitions.WithLabelValues(provider, state).Inc()
}

// Cache Metrics Functions.

// RecordCacheHit increments the hit counter for a cache.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a cache.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheEviction increments the eviction counter for a cache.
func RecordCacheEviction(cache string) {
	globalManager.cacheEvictions.WithLabelValues(cache).Inc()
}

// UpdateCacheEntries sets the live entry gauge for a cache.
func UpdateCacheEntries(cache string, count int) {
	globalManager.cacheEntries.WithLabelValues(cache).Set(float64(count))
}

// Refresh Metrics Functions.

// RecordRefreshAttempt increments the refresh attempts counter.
func RecordRefreshAttempt() {
	globalManager.refreshAttempts.Inc()
}

// RecordRefreshFailure increments the refresh failures counter.
func RecordRefreshFailure() {
	globalManager.refreshFailures.Inc()
}

// RecordRefreshSkipped increments the skipped counter (guard already held).
func RecordRefreshSkipped() {
	globalManager.refreshSkipped.Inc()
}

// UpdateRefreshInFlight sets the in-flight refresh gauge.
func UpdateRefreshInFlight(count int) {
	globalManager.refreshInFlight.Set(float64(count))
}

// RecordSweepRun increments the sweep pass counter.
func RecordSweepRun() {
	globalManager.sweepRuns.Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Notification Metrics Functions.

// RecordNotificationSent increments the delivered notifications counter.
func RecordNotificationSent() {
	globalManager.notificationsSent.Inc()
}

// RecordNotificationError increments the notification failure counter.
func RecordNotificationError() {
	globalManager.notificationErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
