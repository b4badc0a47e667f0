// Package repository defines the cache store interface and errors.
package repository

import (
	"context"
	"time"
)

// CacheEntry is one immutable cached value. Writes replace the whole
// entry; readers never observe a partially written one.
type CacheEntry struct {
	Key        string
	Value      any
	ComputedAt time.Time
	TTL        time.Duration
}

// ExpiresAt returns the entry's expiry instant.
func (e CacheEntry) ExpiresAt() time.Time {
	return e.ComputedAt.Add(e.TTL)
}

// Expired reports whether the entry is past its TTL at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt())
}

// Age returns how long ago the entry was computed.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.ComputedAt)
}

// Stats aggregates cache counters for the stats endpoint.
type Stats struct {
	Name      string `json:"name"`
	Entries   int    `json:"entries"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
}

// Store provides read/write access to cached pipeline results.
//
// Entries past their TTL are stale but stay readable so callers can
// serve the last-known-good value while a refresh runs. Only the
// retention horizon removes entries.
type Store interface {
	// Get returns the entry for key, stale or fresh.
	// Returns ErrNotFound if the key is unknown.
	Get(ctx context.Context, key string) (CacheEntry, error)

	// Set stores value under key with the store's default TTL.
	Set(ctx context.Context, key string, value any)

	// SetWithTTL stores value under key with an explicit TTL.
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration)

	// ExtendTTL pushes the entry's expiry forward without touching its
	// value. Returns false when the key is unknown.
	ExtendTTL(ctx context.Context, key string, extra time.Duration) bool

	// Fresh reports whether key exists and is within its TTL.
	Fresh(ctx context.Context, key string) bool

	// Delete removes key.
	Delete(ctx context.Context, key string)

	// Keys returns a snapshot of the keys currently stored.
	Keys(ctx context.Context) []string

	// Len returns the number of entries tracked.
	Len(ctx context.Context) int

	// Stats returns the cache counters.
	Stats(ctx context.Context) Stats

	// Close stops background maintenance.
	Close() error
}
