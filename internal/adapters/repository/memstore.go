package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tourintel/pkg/metrics"
)

// Default maintenance tuning.
const (
	defaultTTL             = 15 * time.Minute
	defaultRetention       = 24 * time.Hour
	defaultCleanupInterval = 1 * time.Minute
)

// MemoryStore is the in-memory Store implementation. A single write
// lock guards the entry map; every write swaps a complete entry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry

	name            string
	defaultTTL      time.Duration
	retention       time.Duration
	cleanupInterval time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMemoryStore creates a memory store and starts its maintenance
// goroutine. The context bounds the maintenance loop alongside Close.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		name:            "cache",
		defaultTTL:      defaultTTL,
		retention:       defaultRetention,
		cleanupInterval: defaultCleanupInterval,
		entries:         make(map[string]CacheEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMaintenance(ctx)

	return s
}

// Get implements Store.Get. Stale entries are returned like fresh
// ones; the caller decides what staleness means.
func (s *MemoryStore) Get(_ context.Context, key string) (CacheEntry, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.misses.Add(1)
		metrics.RecordCacheMiss(s.name)
		return CacheEntry{}, ErrNotFound
	}

	s.hits.Add(1)
	metrics.RecordCacheHit(s.name)
	return entry, nil
}

// Set implements Store.Set using the store default TTL.
func (s *MemoryStore) Set(ctx context.Context, key string, value any) {
	s.SetWithTTL(ctx, key, value, s.defaultTTL)
}

// SetWithTTL implements Store.SetWithTTL.
func (s *MemoryStore) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	entry := CacheEntry{
		Key:        key,
		Value:      value,
		ComputedAt: time.Now(),
		TTL:        ttl,
	}

	s.mu.Lock()
	s.entries[key] = entry
	size := len(s.entries)
	s.mu.Unlock()

	metrics.UpdateCacheEntries(s.name, size)
}

// ExtendTTL implements Store.ExtendTTL.
func (s *MemoryStore) ExtendTTL(_ context.Context, key string, extra time.Duration) bool {
	if extra <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists {
		return false
	}
	entry.TTL += extra
	s.entries[key] = entry
	return true
}

// Fresh implements Store.Fresh. It does not count as a hit or miss;
// the sweep loop polls it every interval.
func (s *MemoryStore) Fresh(_ context.Context, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	return exists && !entry.Expired(time.Now())
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Keys implements Store.Keys.
func (s *MemoryStore) Keys(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len implements Store.Len.
func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Stats implements Store.Stats.
func (s *MemoryStore) Stats(ctx context.Context) Stats {
	return Stats{
		Name:      s.name,
		Entries:   s.Len(ctx),
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
	}
}

// Close gracefully shuts down the maintenance goroutine.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// startMaintenance starts the background goroutine that evicts
// entries past the retention horizon and refreshes gauge metrics.
func (s *MemoryStore) startMaintenance(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.evictExpired(time.Now())
			}
		}
	}()
}

// evictExpired removes entries that have been stale longer than the
// retention horizon. Stale entries inside the horizon stay readable
// for stale-while-revalidate serving.
func (s *MemoryStore) evictExpired(now time.Time) {
	s.mu.Lock()
	evicted := 0
	for key, entry := range s.entries {
		if now.Sub(entry.ExpiresAt()) > s.retention {
			delete(s.entries, key)
			evicted++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	if evicted > 0 {
		s.evictions.Add(int64(evicted))
		for i := 0; i < evicted; i++ {
			metrics.RecordCacheEviction(s.name)
		}
	}
	metrics.UpdateCacheEntries(s.name, size)
}
