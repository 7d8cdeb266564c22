package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

// Applier moves the page. It must not block for long and reports nothing.
type Applier interface {
	ApplyScroll(ctx context.Context, signal model.ScrollSignal)
}

// Queue defines how workers receive signals.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.ScrollSignal
}

// Worker applies signals until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of a session queue. Signals reach
// the renderer in the order they were queued.
type InMemoryWorker struct {
	queue    Queue
	applier  Applier
	name     string
	observe  func(model.ScrollSignal)

	processed atomic.Uint64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
	started      atomic.Bool

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		observe:  func(model.ScrollSignal) {},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run runs the worker loop on the calling goroutine. Only the first call to
// Run or Start has any effect.
func (w *InMemoryWorker) Run(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.loop(ctx)
}

// Start runs the worker loop on a new goroutine. Once Start returns, Shutdown
// waits for that goroutine.
func (w *InMemoryWorker) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.loop(ctx)
}

func (w *InMemoryWorker) loop(ctx context.Context) {
	defer close(w.done)

	signals := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			// A stop that raced with delivery wins.
			select {
			case <-w.shutdown:
				return
			default:
			}
			w.process(ctx, sig)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	if !w.started.Load() {
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many signals reached the renderer.
func (w *InMemoryWorker) Processed() uint64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) process(ctx context.Context, signal model.ScrollSignal) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	w.applier.ApplyScroll(ctx, signal)
	w.processed.Add(1)
	w.observe(signal)

	w.logger.Debug(ctx, "scroll applied", logger.Float64("deltaY", signal.DeltaY))
}
