// Package model contains domain models passed between layers.
package model

// GazeData is one sensor observation in normalized viewport coordinates.
type GazeData struct {
	X          float64 `json:"x"`          // 0 = left edge, 1 = right edge
	Y          float64 `json:"y"`          // 0 = top edge, 1 = bottom edge
	Confidence float64 `json:"confidence"` // 0 = no face, 1 = fully reliable
}

// Clamped returns a copy with every field limited to [0,1].
func (g GazeData) Clamped() GazeData {
	return GazeData{
		X:          Clamp(g.X, 0, 1),
		Y:          Clamp(g.Y, 0, 1),
		Confidence: Clamp(g.Confidence, 0, 1),
	}
}

// ScrollSignal is one control output: a signed vertical pixel offset.
// Positive scrolls toward the end of the content.
type ScrollSignal struct {
	DeltaY float64 `json:"deltaY"`
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
