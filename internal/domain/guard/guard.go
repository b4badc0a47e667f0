// Package guard tracks in-flight refresh keys so concurrent refreshes
// of the same key collapse into one unit of work.
package guard

import (
	"sync"
	"sync/atomic"
)

// Guard is a per-key in-flight set. TryAcquire and Release are the
// only mutation points; callers that fail to acquire must not refresh.
type Guard interface {
	// TryAcquire atomically marks key as in flight. Returns false if
	// the key is already held or the guard is at capacity.
	TryAcquire(key string) bool

	// Release removes key from the in-flight set. Releasing a key
	// that is not held is a no-op.
	Release(key string)

	// InFlight returns the number of keys currently held.
	InFlight() int
}

// inMemoryGuard implements Guard with a mutex-protected set.
type inMemoryGuard struct {
	mu          sync.Mutex
	held        map[string]struct{}
	maxInFlight int // 0 or negative = unbounded
	size        atomic.Int64
}

// NewInMemoryGuard creates an in-memory guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		held: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// TryAcquire atomically marks key as in flight.
func (g *inMemoryGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.held[key]; exists {
		return false
	}
	if g.maxInFlight > 0 && len(g.held) >= g.maxInFlight {
		return false
	}

	g.held[key] = struct{}{}
	g.size.Add(1)
	return true
}

// Release removes key from the in-flight set.
func (g *inMemoryGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.held[key]; exists {
		delete(g.held, key)
		g.size.Add(-1)
	}
}

// InFlight returns the number of keys currently held.
func (g *inMemoryGuard) InFlight() int {
	return int(g.size.Load())
}
