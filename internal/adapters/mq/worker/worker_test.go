package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/eyeflow/internal/adapters/mq/worker"
	model "github.com/okian/eyeflow/internal/domain/model"
	logging "github.com/okian/eyeflow/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	ch chan model.ScrollSignal
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.ScrollSignal, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.ScrollSignal { return mq.ch }

func (mq *mockQueue) add(deltaY float64) { mq.ch <- model.ScrollSignal{DeltaY: deltaY} }

type mockRenderer struct {
	mu      sync.Mutex
	signals []model.ScrollSignal
}

func (r *mockRenderer) ApplyScroll(_ context.Context, s model.ScrollSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

func (r *mockRenderer) snapshot() []model.ScrollSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ScrollSignal, len(r.signals))
	copy(out, r.signals)
	return out
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker wired to a renderer", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		renderer := &mockRenderer{}
		var observed []float64
		var obsMu sync.Mutex
		w := worker.NewInMemoryWorker(queue, renderer,
			worker.WithName("test-worker"),
			worker.WithObserver(func(s model.ScrollSignal) {
				obsMu.Lock()
				observed = append(observed, s.DeltaY)
				obsMu.Unlock()
			}),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w.Start(ctx)

		convey.Convey("When three signals are queued", func() {
			queue.add(-6)
			queue.add(-10.8)
			queue.add(-14.64)

			ok := waitFor(func() bool { return len(renderer.snapshot()) == 3 })

			convey.Convey("Then every signal reaches the renderer unchanged and in order", func() {
				convey.So(ok, convey.ShouldBeTrue)
				got := renderer.snapshot()
				convey.So(got[0].DeltaY, convey.ShouldAlmostEqual, -6.0, 1e-9)
				convey.So(got[1].DeltaY, convey.ShouldAlmostEqual, -10.8, 1e-9)
				convey.So(got[2].DeltaY, convey.ShouldAlmostEqual, -14.64, 1e-9)
				convey.So(w.Processed(), convey.ShouldEqual, 3)

				obsMu.Lock()
				convey.So(len(observed), convey.ShouldEqual, 3)
				obsMu.Unlock()
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops and later signals are not applied", func() {
				convey.So(err, convey.ShouldBeNil)
				queue.add(30)
				time.Sleep(20 * time.Millisecond)
				convey.So(renderer.snapshot(), convey.ShouldBeEmpty)
			})

			convey.Convey("And a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerStopsOnQueueClose(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		w := worker.NewInMemoryWorker(queue, &mockRenderer{})

		finished := make(chan struct{})
		go func() {
			w.Run(context.Background())
			close(finished)
		}()

		convey.Convey("When its queue channel is closed", func() {
			close(queue.ch)

			convey.Convey("Then Run returns", func() {
				select {
				case <-finished:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	convey.Convey("Given a started worker", t, func() {
		_ = logging.Init()

		w := worker.NewInMemoryWorker(newMockQueue(), &mockRenderer{})
		ctx, cancel := context.WithCancel(context.Background())
		w.Start(ctx)

		convey.Convey("When its context is cancelled", func() {
			cancel()

			convey.Convey("Then Shutdown returns promptly", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerShutdownBeforeStart(t *testing.T) {
	convey.Convey("Given a worker that never ran", t, func() {
		_ = logging.Init()
		w := worker.NewInMemoryWorker(newMockQueue(), &mockRenderer{})

		convey.Convey("Then Shutdown does not wait", func() {
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
