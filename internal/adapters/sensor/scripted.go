package sensor

import (
	"context"
	"time"

	"github.com/okian/eyeflow/internal/domain/model"
)

// Scripted replays a fixed list of samples through a Broadcaster.
type Scripted struct {
	*Broadcaster
	samples  []model.GazeData
	interval time.Duration
}

// NewScripted returns a source that publishes samples, waiting interval between
// them. A zero interval publishes back to back.
func NewScripted(samples []model.GazeData, interval time.Duration) *Scripted {
	cp := make([]model.GazeData, len(samples))
	copy(cp, samples)
	return &Scripted{
		Broadcaster: NewBroadcaster("scripted"),
		samples:     cp,
		interval:    interval,
	}
}

// Run publishes every sample once. It returns early with ctx.Err() when the
// context ends.
func (s *Scripted) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}

	for i, g := range s.samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tick != nil && i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
		s.Publish(g)
	}
	return nil
}
