// Package refresh owns TTL-driven report refreshing: a background
// sweep marks stale tracked keys, the per-key guard collapses
// duplicate work, and refresh units run on the worker pool. Readers
// are never blocked: a stale entry keeps serving while its refresh
// runs, and a failed refresh leaves the previous entry intact.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/scoring"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"
)

// Default controller configuration.
const (
	defaultSweepInterval = 5 * time.Minute

	// defaultRateLimitExtension is how far a rate-limited key's expiry
	// moves so the sweep stops hammering the provider.
	defaultRateLimitExtension = 10 * time.Minute
)

// State is the bookkeeping record for one tracked key.
type State struct {
	Key         string    `json:"key"`
	InFlight    bool      `json:"in_flight"`
	LastAttempt time.Time `json:"last_attempt"`
	LastError   string    `json:"last_error,omitempty"`
}

// Guard is the per-key in-flight set.
type Guard interface {
	TryAcquire(key string) bool
	Release(key string)
	InFlight() int
}

// Enqueuer hands refresh tasks to the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, t model.RefreshTask) error
}

// FreshnessStore answers staleness questions about the report cache
// and lets the controller push an expiry forward.
type FreshnessStore interface {
	Fresh(ctx context.Context, key string) bool
	ExtendTTL(ctx context.Context, key string, extra time.Duration) bool
}

// Runner executes the full pipeline for one task and stores the
// resulting report. The controller never builds reports itself.
type Runner interface {
	Refresh(ctx context.Context, task model.RefreshTask) (model.IntelReport, error)
}

// Notifier receives demand alerts for hot reports.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Controller drives the sweep loop and executes refresh units.
type Controller struct {
	guard    Guard
	store    FreshnessStore
	queue    Enqueuer
	runner   Runner
	notifier Notifier

	sweepInterval      time.Duration
	rateLimitExtension time.Duration

	mu      sync.Mutex
	tracked map[string]model.RefreshTask
	states  map[string]State

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger logger.Logger
}

// NewController creates a refresh controller with configuration
// options.
func NewController(g Guard, store FreshnessStore, q Enqueuer, runner Runner, opts ...Option) *Controller {
	c := &Controller{
		guard:              g,
		store:              store,
		queue:              q,
		runner:             runner,
		sweepInterval:      defaultSweepInterval,
		rateLimitExtension: defaultRateLimitExtension,
		tracked:            make(map[string]model.RefreshTask),
		states:             make(map[string]State),
		stopChan:           make(chan struct{}),
		logger:             logger.Get().Named("refresh"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track registers a key for background refreshing. Tracking an
// already tracked key updates its task template.
func (c *Controller) Track(query string, region types.Region) {
	key := types.IdentityKey(query, region)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked[key] = model.RefreshTask{Key: key, Query: query, Region: region}
}

// Tracked returns a sorted snapshot of the tracked keys.
func (c *Controller) Tracked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.tracked))
	for key := range c.tracked {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// States returns a snapshot of refresh bookkeeping, sorted by key.
func (c *Controller) States() []State {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make([]State, 0, len(c.states))
	for _, state := range c.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Key < states[j].Key })
	return states
}

// Start launches the sweep loop. A non-positive interval disables the
// loop entirely; on-demand refreshes still work.
func (c *Controller) Start(ctx context.Context) {
	if c.sweepInterval <= 0 {
		c.logger.Info(ctx, "refresh sweep disabled")
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			case <-ticker.C:
				c.Sweep(ctx)
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit. Safe to
// call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}

// Sweep enqueues a refresh task for every tracked key that has gone
// stale and is not already refreshing.
func (c *Controller) Sweep(ctx context.Context) {
	metrics.RecordSweepRun()

	c.mu.Lock()
	tasks := make([]model.RefreshTask, 0, len(c.tracked))
	for _, task := range c.tracked {
		tasks = append(tasks, task)
	}
	c.mu.Unlock()

	for _, task := range tasks {
		if c.store.Fresh(ctx, task.Key) {
			continue
		}
		c.enqueue(ctx, task)
	}
}

// enqueue acquires the key guard and hands the task to the queue.
// Tasks enter the queue only with the guard held; Execute releases it.
func (c *Controller) enqueue(ctx context.Context, task model.RefreshTask) {
	if !c.guard.TryAcquire(task.Key) {
		metrics.RecordRefreshSkipped()
		return
	}
	metrics.UpdateRefreshInFlight(c.guard.InFlight())

	task.EnqueuedAt = time.Now()
	if err := c.queue.Enqueue(ctx, task); err != nil {
		c.guard.Release(task.Key)
		metrics.UpdateRefreshInFlight(c.guard.InFlight())
		metrics.RecordRefreshSkipped()
		c.logger.Warn(ctx, "refresh enqueue failed",
			logger.String("key", task.Key),
			logger.Error(err),
		)
		return
	}

	metrics.RecordRefreshAttempt()
}

// Execute runs one queued refresh task. It implements the worker
// pool's executor; the key guard was acquired at enqueue time and is
// released here.
func (c *Controller) Execute(ctx context.Context, task model.RefreshTask) error {
	defer func() {
		c.guard.Release(task.Key)
		metrics.UpdateRefreshInFlight(c.guard.InFlight())
	}()

	_, err := c.refresh(ctx, task)
	return err
}

// RunNow refreshes a key synchronously, bypassing staleness checks
// but still collapsing into any in-flight refresh of the same key.
// Returns ErrRefreshInFlight when another refresh holds the key.
func (c *Controller) RunNow(ctx context.Context, task model.RefreshTask) (model.IntelReport, error) {
	if !c.guard.TryAcquire(task.Key) {
		return model.IntelReport{}, ErrRefreshInFlight
	}
	metrics.UpdateRefreshInFlight(c.guard.InFlight())
	defer func() {
		c.guard.Release(task.Key)
		metrics.UpdateRefreshInFlight(c.guard.InFlight())
	}()

	metrics.RecordRefreshAttempt()
	return c.refresh(ctx, task)
}

// refresh runs the pipeline for one task and keeps the state table
// current. A failure leaves the previous cache entry untouched.
func (c *Controller) refresh(ctx context.Context, task model.RefreshTask) (model.IntelReport, error) {
	c.markStart(task.Key)

	report, err := c.runner.Refresh(ctx, task)
	c.markDone(task.Key, err)

	if err != nil {
		metrics.RecordRefreshFailure()
		if errors.Is(err, upstream.ErrRateLimited) {
			if c.store.ExtendTTL(ctx, task.Key, c.rateLimitExtension) {
				c.logger.Warn(ctx, "provider rate limited; extended cache entry",
					logger.String("key", task.Key),
					logger.Duration("extension", c.rateLimitExtension),
				)
			}
		}
		return model.IntelReport{}, fmt.Errorf("refreshing %s: %w", task.Key, err)
	}

	c.alert(ctx, report)
	return report, nil
}

// markStart records the beginning of a refresh attempt.
func (c *Controller) markStart(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.states[key]
	state.Key = key
	state.InFlight = true
	state.LastAttempt = time.Now()
	c.states[key] = state
}

// markDone records the attempt outcome. The last error sticks around
// until the next successful refresh.
func (c *Controller) markDone(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.states[key]
	state.Key = key
	state.InFlight = false
	if err != nil {
		state.LastError = err.Error()
	} else {
		state.LastError = ""
	}
	c.states[key] = state
}

// alert pushes a notification when a refreshed report carries
// high-demand events. Delivery failures never affect refresh state.
func (c *Controller) alert(ctx context.Context, report model.IntelReport) {
	if c.notifier == nil {
		return
	}

	hot := 0
	top := 0
	for _, event := range report.Events {
		if event.DemandTier == scoring.TierHigh || event.DemandTier == scoring.TierExtreme {
			hot++
			if event.SelloutProbability > top {
				top = event.SelloutProbability
			}
		}
	}
	if hot == 0 {
		return
	}

	text := fmt.Sprintf("Demand alert: %s has %d event(s) at HIGH or EXTREME tier (top sell-out probability %d/100)",
		report.ArtistName, hot, top)
	if err := c.notifier.Send(ctx, text); err != nil {
		c.logger.Warn(ctx, "demand alert delivery failed", logger.Error(err))
	}
}
