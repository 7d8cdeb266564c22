package scroll

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithScrollZoneFraction sets the height of the top and bottom trigger zones
// as a fraction of the viewport. Values outside (0, 0.5] are ignored.
func WithScrollZoneFraction(fraction float64) Option {
	return func(g *Generator) {
		if fraction > 0 && fraction <= maxZoneFraction {
			g.zone = fraction
		}
	}
}

// WithMaxScrollSpeed sets the largest |deltaY| in pixels per call.
func WithMaxScrollSpeed(pixels float64) Option {
	return func(g *Generator) {
		if pixels > 0 {
			g.maxSpeed = pixels
		}
	}
}

// WithSmoothingFactor sets the weight given to the new target on each call.
// Values outside [0,1] are ignored.
func WithSmoothingFactor(factor float64) Option {
	return func(g *Generator) {
		if factor >= 0 && factor <= 1 {
			g.smoothing = factor
		}
	}
}

// WithSpeedMultiplier scales the maximum scroll speed. It carries the user's
// scroll speed setting into the generator at construction time.
func WithSpeedMultiplier(multiplier float64) Option {
	return func(g *Generator) {
		if multiplier > 0 {
			g.multiplier = multiplier
		}
	}
}
