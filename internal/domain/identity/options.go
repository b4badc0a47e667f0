package identity

import "time"

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL overrides how long resolved identities stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}
