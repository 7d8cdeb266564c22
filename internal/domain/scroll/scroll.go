// Package scroll turns gaze positions into smoothed per-frame scroll deltas.
//
// A Generator holds one piece of state, the previous output, and is meant to
// be driven by a single caller per tracking session. It does no locking.
package scroll

import (
	"github.com/okian/eyeflow/internal/domain/model"
)

const (
	defaultZoneFraction = 0.15
	defaultMaxSpeed     = 30
	defaultSmoothing    = 0.2
	defaultMultiplier   = 1.0
	maxZoneFraction     = 0.5
)

// Config is the effective, read-only configuration of a Generator.
type Config struct {
	ScrollZoneFraction float64
	MaxScrollSpeed     float64
	SmoothingFactor    float64
}

// Generator converts GazeData into ScrollSignal using a dead zone and
// first-order exponential smoothing.
type Generator struct {
	zone       float64
	maxSpeed   float64
	smoothing  float64
	multiplier float64

	lastDeltaY float64
}

// New creates a Generator. Configuration is fixed for its lifetime.
func New(opts ...Option) *Generator {
	g := &Generator{
		zone:       defaultZoneFraction,
		maxSpeed:   defaultMaxSpeed,
		smoothing:  defaultSmoothing,
		multiplier: defaultMultiplier,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.maxSpeed *= g.multiplier

	return g
}

// Config returns the settings the generator runs with.
func (g *Generator) Config() Config {
	return Config{
		ScrollZoneFraction: g.zone,
		MaxScrollSpeed:     g.maxSpeed,
		SmoothingFactor:    g.smoothing,
	}
}

// LastDeltaY returns the previous output.
func (g *Generator) LastDeltaY() float64 {
	return g.lastDeltaY
}

// ComputeScrollSignal maps one gaze sample to the next scroll delta.
//
// Only gaze.Y takes part. Inputs outside [0,1] are not rejected; the target
// then scales past the maximum speed in proportion.
func (g *Generator) ComputeScrollSignal(gaze model.GazeData) model.ScrollSignal {
	target := g.target(gaze.Y)

	deltaY := g.lastDeltaY + (target-g.lastDeltaY)*g.smoothing
	g.lastDeltaY = deltaY

	return model.ScrollSignal{DeltaY: deltaY}
}

// target is the unsmoothed velocity for a vertical gaze position.
func (g *Generator) target(y float64) float64 {
	z := g.zone
	switch {
	case y < z:
		return -g.maxSpeed * (1 - y/z)
	case y > 1-z:
		return g.maxSpeed * ((y - (1 - z)) / z)
	default:
		return 0
	}
}
