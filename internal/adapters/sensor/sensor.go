// Package sensor defines the gaze source contract and its fan-out.
//
// Sources push samples; they never wait for consumers. A frame without a
// detected face produces no sample at all.
package sensor

import (
	"sync"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/metrics"
)

// Sensor is anything that pushes gaze samples to registered callbacks.
type Sensor interface {
	// OnGazeUpdate registers cb. Registrations cannot be removed.
	OnGazeUpdate(cb func(model.GazeData))
}

// Broadcaster delivers each published sample to every registered listener,
// in registration order, on the publishing goroutine.
type Broadcaster struct {
	source    string
	mu        sync.RWMutex
	listeners []func(model.GazeData)
}

var _ Sensor = (*Broadcaster)(nil)

// NewBroadcaster returns an empty broadcaster; source labels its samples in metrics.
func NewBroadcaster(source string) *Broadcaster {
	if source == "" {
		source = "unknown"
	}
	return &Broadcaster{source: source}
}

// OnGazeUpdate implements Sensor.
func (b *Broadcaster) OnGazeUpdate(cb func(model.GazeData)) {
	if cb == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, cb)
	b.mu.Unlock()
}

// Publish clamps g and hands it to each listener.
func (b *Broadcaster) Publish(g model.GazeData) {
	g = g.Clamped()

	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()

	metrics.RecordGazeSample(b.source)
	for _, cb := range listeners {
		cb(g)
	}
}

// Listeners returns how many callbacks are registered.
func (b *Broadcaster) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Source returns the metrics label of this broadcaster.
func (b *Broadcaster) Source() string { return b.source }
