// Package renderer applies scroll signals to a live page.
//
// Renderers never report failure to their caller. A failed scroll is logged,
// counted and forgotten; the next signal tries again.
package renderer

import (
	"context"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/internal/domain/page"
	"github.com/okian/eyeflow/pkg/logger"
)

// Renderer moves the visible scroll position of some target.
type Renderer interface {
	ApplyScroll(ctx context.Context, signal model.ScrollSignal)
}

// Page is the part of a browser page a renderer drives. playwright.Page
// satisfies it.
type Page interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// Func adapts a plain function to Renderer.
type Func func(ctx context.Context, signal model.ScrollSignal)

// ApplyScroll implements Renderer.
func (f Func) ApplyScroll(ctx context.Context, signal model.ScrollSignal) { f(ctx, signal) }

const defaultMultiplier = 1.0

type options struct {
	multiplier float64
	logger     logger.Logger
}

// Option configures a renderer.
type Option func(*options)

// WithMultiplier scales every delta before it is applied.
func WithMultiplier(m float64) Option {
	return func(o *options) {
		if m > 0 {
			o.multiplier = m
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{multiplier: defaultMultiplier}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("renderer")
	}
	o.logger = o.logger.Named(name)
	return o
}

// Select builds the renderer for a classified page.
func Select(ctx context.Context, t page.Type, p Page, opts ...Option) Renderer {
	if t == page.PDF {
		return NewPdfRenderer(ctx, p, opts...)
	}
	return NewWebRenderer(p, opts...)
}
