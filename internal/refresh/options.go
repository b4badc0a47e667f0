package refresh

import "time"

// Option configures a Controller.
type Option func(*Controller)

// WithSweepInterval sets how often the staleness sweep runs. Zero or
// negative disables the background loop.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Controller) {
		c.sweepInterval = interval
	}
}

// WithNotifier attaches a demand-alert sink.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithRateLimitExtension sets how far a rate-limited key's expiry is
// pushed forward.
func WithRateLimitExtension(extension time.Duration) Option {
	return func(c *Controller) {
		if extension > 0 {
			c.rateLimitExtension = extension
		}
	}
}
