// Package service wires the intel pipeline together behind one
// façade: cache-aware report resolution, heatmap reads, forced
// refreshes, and the runtime stats the HTTP layer exposes.
package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/tourintel/internal/adapters/mq/queue"
	"github.com/okian/tourintel/internal/adapters/mq/worker"
	"github.com/okian/tourintel/internal/adapters/notify"
	"github.com/okian/tourintel/internal/adapters/repository"
	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/guard"
	"github.com/okian/tourintel/internal/domain/heatmap"
	"github.com/okian/tourintel/internal/domain/identity"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/report"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/internal/refresh"
	"github.com/okian/tourintel/pkg/logger"
)

// Default service configuration.
const (
	defaultQueueSize       = 1024
	defaultRefreshInterval = 5 * time.Minute
	defaultReportTTL       = 15 * time.Minute
	defaultHeatmapTTL      = 30 * time.Minute
	defaultIdentityTTL     = time.Hour
	defaultHeatmapTopN     = 10

	// missPollInterval paces cache polls while another caller's
	// synchronous compute holds the key.
	missPollInterval = 25 * time.Millisecond
)

// Service implements the API dependencies for the intel pipeline.
type Service struct {
	mu sync.RWMutex

	// Upstream providers
	ticketing  TicketingProvider
	streaming  StreamingProvider
	video      VideoProvider
	shortVideo ShortVideoProvider

	// Pipeline engines, built on Start
	resolver   *identity.Resolver
	aggregator *events.Aggregator
	heatmap    *heatmap.Engine
	assembler  *report.Assembler

	// Caching and refresh plumbing, built on Start
	reportCache   *repository.MemoryStore
	heatmapCache  *repository.MemoryStore
	identityCache *repository.MemoryStore
	keyGuard      guard.Guard
	taskQueue     *queue.InMemoryQueue
	pool          *worker.Pool
	refresher     *refresh.Controller
	notifier      notify.Sink

	// Configuration
	workerCount     int
	queueSize       int
	refreshInterval time.Duration
	reportTTL       time.Duration
	heatmapTTL      time.Duration
	identityTTL     time.Duration
	defaultRegion   types.Region
	eventLimit      int
	heatmapTopN     int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTicketing sets the ticketing provider.
func WithTicketing(p TicketingProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.ticketing = p
		}
	}
}

// WithStreaming sets the streaming provider.
func WithStreaming(p StreamingProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.streaming = p
		}
	}
}

// WithVideo sets the video provider.
func WithVideo(p VideoProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.video = p
		}
	}
}

// WithShortVideo sets the short-video provider.
func WithShortVideo(p ShortVideoProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.shortVideo = p
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the refresh task queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets the background sweep cadence. Zero disables
// the sweep entirely; on-demand refreshes keep working.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.refreshInterval = interval
		}
	}
}

// WithReportTTL sets the freshness window for assembled reports.
func WithReportTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.reportTTL = ttl
		}
	}
}

// WithHeatmapTTL sets the freshness window for computed heatmaps.
func WithHeatmapTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.heatmapTTL = ttl
		}
	}
}

// WithIdentityTTL sets the freshness window for resolved identities.
func WithIdentityTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.identityTTL = ttl
		}
	}
}

// WithDefaultRegion sets the region applied when a caller names none.
func WithDefaultRegion(region types.Region) Option {
	return func(s *Service) {
		if region != "" {
			s.defaultRegion = region
		}
	}
}

// WithEventLimit caps how many events a report carries.
func WithEventLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.eventLimit = limit
		}
	}
}

// WithHeatmapTopN sets how many cities a heatmap ranks.
func WithHeatmapTopN(topN int) Option {
	return func(s *Service) {
		if topN > 0 {
			s.heatmapTopN = topN
		}
	}
}

// WithNotifier sets the demand-alert sink.
func WithNotifier(sink notify.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.notifier = sink
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration. Providers left
// unset run disabled: their stages degrade with warnings instead of
// data, and the report contract still holds.
func New(opts ...Option) *Service {
	s := &Service{
		ticketing:       disabledProvider{name: "ticketing"},
		streaming:       disabledProvider{name: "streaming"},
		video:           disabledProvider{name: "video"},
		shortVideo:      disabledProvider{name: "short-video"},
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       defaultQueueSize,
		refreshInterval: defaultRefreshInterval,
		reportTTL:       defaultReportTTL,
		heatmapTTL:      defaultHeatmapTTL,
		identityTTL:     defaultIdentityTTL,
		defaultRegion:   types.DefaultRegion,
		eventLimit:      events.DefaultLimit,
		heatmapTopN:     defaultHeatmapTopN,
		notifier:        notify.Discard{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the caches, pipeline engines, and refresh plumbing.
// Starting an already started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.reportCache = repository.NewMemoryStore(ctx,
		repository.WithName("report"),
		repository.WithDefaultTTL(s.reportTTL),
	)
	s.heatmapCache = repository.NewMemoryStore(ctx,
		repository.WithName("heatmap"),
		repository.WithDefaultTTL(s.heatmapTTL),
	)
	s.identityCache = repository.NewMemoryStore(ctx,
		repository.WithName("identity"),
		repository.WithDefaultTTL(s.identityTTL),
	)

	s.keyGuard = guard.NewInMemoryGuard()
	s.taskQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)

	s.resolver = identity.NewResolver(
		s.ticketing,
		s.streaming,
		s.video,
		typedCache[model.ArtistIdentity]{store: s.identityCache},
		identity.WithTTL(s.identityTTL),
	)
	s.aggregator = events.NewAggregator(s.ticketing)
	s.heatmap = heatmap.NewEngine(
		s.ticketing,
		typedCache[[]model.CityWeight]{store: s.heatmapCache},
		heatmap.WithTopN(s.heatmapTopN),
		heatmap.WithTTL(s.heatmapTTL),
	)
	s.assembler = report.NewAssembler()

	s.refresher = refresh.NewController(s.keyGuard, s.reportCache, s.taskQueue, s,
		refresh.WithSweepInterval(s.refreshInterval),
		refresh.WithNotifier(s.notifier),
	)
	s.pool = worker.NewPool(s.workerCount, s.taskQueue, s.refresher)
	s.pool.Start(ctx)
	s.refresher.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "intel service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("refresh_interval", s.refreshInterval),
	)

	return nil
}

// Stop tears the service down: the sweep stops first so nothing new
// enters the queue, then the pool drains it, then the caches close.
// Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()

	s.refresher.Stop()
	_ = s.pool.Shutdown(ctx)

	_ = s.reportCache.Close()
	_ = s.heatmapCache.Close()
	_ = s.identityCache.Close()

	s.started = false
	s.logger.Info(ctx, "intel service stopped")
}

// ResolveIntel returns the intel report for an artist query. A fresh
// cache entry serves directly; a stale entry serves immediately while
// one background refresh recomputes it; a cold miss computes
// synchronously. The key is tracked for future background sweeps.
func (s *Service) ResolveIntel(ctx context.Context, query string, region types.Region) (model.IntelReport, error) {
	if !s.running() {
		return model.IntelReport{}, ErrNotStarted
	}
	if strings.TrimSpace(query) == "" {
		return model.IntelReport{}, ErrEmptyQuery
	}
	if region == "" {
		region = s.defaultRegion
	}

	key := types.IdentityKey(query, region)
	s.refresher.Track(query, region)

	task := model.RefreshTask{Key: key, Query: query, Region: region}
	if entry, err := s.reportCache.Get(ctx, key); err == nil {
		if cached, ok := entry.Value.(model.IntelReport); ok {
			if !entry.Expired(time.Now()) {
				return cached, nil
			}
			s.triggerRefresh(ctx, task)
			return cached, nil
		}
	}

	return s.computeMiss(ctx, task)
}

// CachedHeatmap returns the cached city ranking for an artist without
// computing anything. Stale entries still serve: the heatmap read is a
// last-known-good view, renewed only by pipeline runs.
func (s *Service) CachedHeatmap(ctx context.Context, query string, region types.Region) ([]model.CityWeight, bool) {
	if !s.running() || strings.TrimSpace(query) == "" {
		return nil, false
	}
	if region == "" {
		region = s.defaultRegion
	}

	entry, err := s.heatmapCache.Get(ctx, types.HeatmapKey(query, region))
	if err != nil {
		return nil, false
	}
	cities, ok := entry.Value.([]model.CityWeight)
	if !ok {
		return nil, false
	}
	return append([]model.CityWeight{}, cities...), true
}

// ForceRefresh recomputes a report immediately, bypassing staleness
// but not the per-key guard. When another refresh already holds the
// key, the cached report serves instead of a second fetch.
func (s *Service) ForceRefresh(ctx context.Context, query string, region types.Region) (model.IntelReport, error) {
	if !s.running() {
		return model.IntelReport{}, ErrNotStarted
	}
	if strings.TrimSpace(query) == "" {
		return model.IntelReport{}, ErrEmptyQuery
	}
	if region == "" {
		region = s.defaultRegion
	}

	key := types.IdentityKey(query, region)
	s.refresher.Track(query, region)

	task := model.RefreshTask{Key: key, Query: query, Region: region, Force: true}
	fresh, err := s.refresher.RunNow(ctx, task)
	if err == nil {
		return fresh, nil
	}
	if errors.Is(err, refresh.ErrRefreshInFlight) {
		if cached, ok := s.cachedReport(ctx, key); ok {
			return cached, nil
		}
	}
	return model.IntelReport{}, err
}

// Refresh implements the refresh controller's Runner: one full
// pipeline run plus the cache write. A failed run writes nothing, so
// the previous entry survives.
func (s *Service) Refresh(ctx context.Context, task model.RefreshTask) (model.IntelReport, error) {
	region := task.Region
	if region == "" {
		region = s.defaultRegion
	}

	intel, err := s.runPipeline(ctx, task.Query, region)
	if err != nil {
		return model.IntelReport{}, err
	}

	s.reportCache.SetWithTTL(ctx, task.Key, intel, s.reportTTL)
	return intel, nil
}

// Stats reports runtime counters for the stats endpoint.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	stats["caches"] = []repository.Stats{
		s.reportCache.Stats(ctx),
		s.heatmapCache.Stats(ctx),
		s.identityCache.Stats(ctx),
	}
	stats["queue"] = map[string]any{
		"length":   s.taskQueue.Len(ctx),
		"capacity": s.queueSize,
	}
	stats["workers"] = map[string]any{
		"count":  s.pool.Size(),
		"active": s.pool.Active(),
	}
	stats["refresh"] = map[string]any{
		"tracked":   s.refresher.Tracked(),
		"in_flight": s.keyGuard.InFlight(),
		"states":    s.refresher.States(),
	}
	return stats
}

// running reports whether Start has completed and Stop has not.
func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// triggerRefresh starts one background refresh for the key, collapsing
// into any refresh already in flight. The spawned run detaches from
// the caller's cancellation but keeps its values.
func (s *Service) triggerRefresh(ctx context.Context, task model.RefreshTask) {
	background := context.WithoutCancel(ctx)
	go func() {
		_, err := s.refresher.RunNow(background, task)
		if err != nil && !errors.Is(err, refresh.ErrRefreshInFlight) {
			s.logger.Warn(background, "background refresh failed",
				logger.String("key", task.Key),
				logger.Error(err),
			)
		}
	}()
}

// computeMiss fills a cold cache key synchronously. Concurrent misses
// on one key collapse: a single caller computes while the rest poll
// the cache for the winner's report, re-trying the guard in case the
// winner failed and left nothing behind.
func (s *Service) computeMiss(ctx context.Context, task model.RefreshTask) (model.IntelReport, error) {
	for {
		intel, err := s.refresher.RunNow(ctx, task)
		if err == nil {
			return intel, nil
		}
		if !errors.Is(err, refresh.ErrRefreshInFlight) {
			return model.IntelReport{}, err
		}

		if cached, ok := s.cachedReport(ctx, task.Key); ok {
			return cached, nil
		}
		select {
		case <-ctx.Done():
			return model.IntelReport{}, ctx.Err()
		case <-time.After(missPollInterval):
		}
		if cached, ok := s.cachedReport(ctx, task.Key); ok {
			return cached, nil
		}
	}
}

// cachedReport returns the cached report for key regardless of
// freshness.
func (s *Service) cachedReport(ctx context.Context, key string) (model.IntelReport, bool) {
	entry, err := s.reportCache.Get(ctx, key)
	if err != nil {
		return model.IntelReport{}, false
	}
	intel, ok := entry.Value.(model.IntelReport)
	return intel, ok
}
