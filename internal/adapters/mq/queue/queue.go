// Package queue carries computed scroll signals from the sensor callback to
// the renderer worker.
//
// The queue never makes the producer wait. When it is full the oldest
// pending signal is dropped, so the renderer always applies the freshest one.
// Gaze samples never pass through here: every sample reaches the generator.
package queue

import (
	"context"
	"sync"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/metrics"
)

const defaultQueueCapacity = 1

// Sample is the payload type flowing through the queue.
type Sample = model.ScrollSignal

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a signal, superseding the oldest pending one when full.
	// Returns false only if the queue is closed or ctx is done.
	Enqueue(ctx context.Context, s Sample) bool

	// Dequeue returns the channel signals are delivered on.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Sample

	// Len returns the current number of pending signals.
	Len(ctx context.Context) int

	// Close stops accepting signals and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples    chan Sample
	capacity   int
	superseded uint64

	mu     sync.Mutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.samples = make(chan Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a sample to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Sample) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	for {
		select {
		case q.samples <- s:
			metrics.UpdateQueueSize(len(q.samples))
			return true
		default:
		}

		// Full: drop the oldest. The consumer may have taken it already,
		// in which case the next send succeeds anyway.
		select {
		case <-q.samples:
			q.superseded++
			metrics.RecordSignalSuperseded()
		default:
		}
	}
}

// Dequeue returns the delivery channel. ctx is accepted for interface symmetry;
// consumers select on their own context.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Sample {
	return q.samples
}

// Len returns the current number of pending signals.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.samples)
	metrics.UpdateQueueSize(size)
	return size
}

// Superseded returns how many signals were dropped in favour of newer ones.
func (q *InMemoryQueue) Superseded() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.superseded
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.samples)
	q.closed = true
	metrics.UpdateQueueSize(0)

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
