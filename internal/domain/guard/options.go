// Package guard tracks in-flight refresh keys.
package guard

// Option applies a configuration option to the in-memory guard.
type Option func(*inMemoryGuard)

// WithMaxInFlight caps the number of keys held at once.
// If maxInFlight > 0: TryAcquire fails once the cap is reached.
// If maxInFlight <= 0: unbounded (no cap).
func WithMaxInFlight(maxInFlight int) Option {
	return func(g *inMemoryGuard) {
		g.maxInFlight = maxInFlight
	}
}
