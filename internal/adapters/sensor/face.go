package sensor

import "github.com/okian/eyeflow/internal/domain/model"

const (
	scoreWeight = 0.7
	areaWeight  = 0.3
)

// Face is one detector hit, normalized to the frame.
type Face struct {
	X, Y, W, H float64
	Score      float64
	LeftEye    Point
	RightEye   Point
}

// rank prefers confident faces, then large (near) ones.
func (f Face) rank() float64 {
	return f.Score*scoreWeight + f.W*f.H*areaWeight
}

// SelectBest picks the face most likely to be the reader. Only one face is
// ever tracked.
func SelectBest(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.rank() > best.rank() {
			best = f
		}
	}
	return best, true
}

// GazeFromFaces selects the best face and converts its eyes into a sample.
func GazeFromFaces(faces []Face) (model.GazeData, bool) {
	f, ok := SelectBest(faces)
	return FromEyes(f.LeftEye, f.RightEye, ok)
}
