package report

import "time"

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces the timestamp source. Tests pin it for stable
// generated_at values.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) {
		if clock != nil {
			a.clock = clock
		}
	}
}
