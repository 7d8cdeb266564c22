package gazereplay

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/okian/eyeflow/internal/domain/model"
)

// Shape names a synthetic gaze trace.
type Shape string

// Known shapes.
const (
	ShapeTop    Shape = "top"    // reading the top edge
	ShapeBottom Shape = "bottom" // reading the bottom edge
	ShapeCenter Shape = "center" // resting in the dead zone
	ShapeSweep  Shape = "sweep"  // top to bottom, then back
	ShapeJitter Shape = "jitter" // uniform noise over the viewport
)

const (
	edgeOffset = 0.03
	noise      = 0.02
)

// Shapes lists every known shape.
func Shapes() []Shape {
	return []Shape{ShapeTop, ShapeBottom, ShapeCenter, ShapeSweep, ShapeJitter}
}

// ParseShape resolves a shape name case-insensitively.
func ParseShape(s string) (Shape, error) {
	want := Shape(strings.ToLower(strings.TrimSpace(s)))
	for _, sh := range Shapes() {
		if sh == want {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// Generate returns n samples of the given shape. The same seed always yields
// the same trace.
func Generate(shape Shape, n int, seed int64) ([]model.GazeData, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative sample count %d", n)
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible traces

	var y func(i int) float64
	switch shape {
	case ShapeTop:
		y = func(int) float64 { return edgeOffset + rng.Float64()*noise }
	case ShapeBottom:
		y = func(int) float64 { return 1 - edgeOffset - rng.Float64()*noise }
	case ShapeCenter:
		y = func(int) float64 { return 0.5 + (rng.Float64()-0.5)*noise }
	case ShapeSweep:
		y = func(i int) float64 { return sweep(i, n) }
	case ShapeJitter:
		y = func(int) float64 { return rng.Float64() }
	default:
		return nil, fmt.Errorf("unknown shape %q", shape)
	}

	out := make([]model.GazeData, n)
	for i := range out {
		out[i] = model.GazeData{
			X:          0.5 + (rng.Float64()-0.5)*noise,
			Y:          y(i),
			Confidence: 1,
		}.Clamped()
	}
	return out, nil
}

// sweep walks 0 -> 1 over the first half of the trace and back over the second.
func sweep(i, n int) float64 {
	half := n / 2
	if half == 0 {
		return 0
	}
	if i < half {
		return float64(i) / float64(half)
	}
	return 1 - float64(i-half)/float64(n-half)
}
