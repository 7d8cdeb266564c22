// Package worker hands queued scroll signals to the renderer.
package worker

import (
	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithObserver registers fn to see every signal after it has been applied.
func WithObserver(fn func(model.ScrollSignal)) Option {
	return func(w *InMemoryWorker) {
		if fn != nil {
			w.observe = fn
		}
	}
}
