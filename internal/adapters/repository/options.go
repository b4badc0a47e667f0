// Package repository defines the cache store interface and errors.
package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithName sets the cache name used in metrics labels.
func WithName(name string) Option {
	return func(s *MemoryStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithDefaultTTL sets the TTL applied by Set.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// WithRetention sets how long a stale entry stays readable before the
// maintenance loop evicts it.
func WithRetention(retention time.Duration) Option {
	return func(s *MemoryStore) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithCleanupInterval sets the maintenance loop interval.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}
