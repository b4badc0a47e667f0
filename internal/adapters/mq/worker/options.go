package worker

import (
	"sync/atomic"

	"github.com/okian/tourintel/pkg/logger"
)

// Option applies a configuration option to the RefreshWorker.
type Option func(*RefreshWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RefreshWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *RefreshWorker) {
		if log != nil {
			w.logger = log
		}
	}
}

// withActiveCounter shares the pool's in-flight counter with a worker.
func withActiveCounter(counter *atomic.Int64) Option {
	return func(w *RefreshWorker) {
		w.active = counter
	}
}
