// Package gazereplay drives a running EyeFlow service with synthetic gaze
// traces over HTTP and reports how the service responded.
package gazereplay

import (
	"time"

	"github.com/okian/eyeflow/internal/domain/model"
)

// Config holds configuration for one replay.
type Config struct {
	BaseURL    string        // Base URL of the service
	Shape      Shape         // Trace to generate
	Samples    int           // Number of samples to post
	Rate       int           // Samples per second; 0 posts back to back
	Seed       int64         // Seed for the trace generator
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON dump of the trace
	Verbose    bool
}

// Stats holds replay statistics.
type Stats struct {
	RunID     string
	Generated int
	Sent      int
	Accepted  int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Server is the /stats snapshot taken after the last sample.
	Server map[string]interface{}
}

// Sample is the body of POST /gaze.
type Sample struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

func toSample(g model.GazeData) Sample {
	return Sample{X: g.X, Y: g.Y, Confidence: g.Confidence}
}
