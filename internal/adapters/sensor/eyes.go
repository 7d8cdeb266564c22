package sensor

import "github.com/okian/eyeflow/internal/domain/model"

// Point is a landmark position normalized to the frame, 0..1 on both axes.
type Point struct {
	X, Y float64
}

// FromEyes turns the two eye landmarks of a detected face into a gaze sample.
// It reports false when no face was detected; such frames emit nothing.
func FromEyes(left, right Point, detected bool) (model.GazeData, bool) {
	if !detected {
		return model.GazeData{}, false
	}
	g := model.GazeData{
		X:          (left.X + right.X) / 2,
		Y:          (left.Y + right.Y) / 2,
		Confidence: 1,
	}
	return g.Clamped(), true
}
