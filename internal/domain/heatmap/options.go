package heatmap

import "time"

// Option configures the heatmap engine.
type Option func(*Engine)

// WithTopN sets how many cities a ranking carries.
func WithTopN(topN int) Option {
	return func(e *Engine) {
		if topN > 0 {
			e.topN = topN
		}
	}
}

// WithTTL sets how long computed rankings stay fresh.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}
