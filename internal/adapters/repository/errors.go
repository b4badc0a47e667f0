package repository

import "errors"

// Sentinel kinds for cache lookups.
var (
	ErrNotFound = errors.New("cache entry not found")
)
