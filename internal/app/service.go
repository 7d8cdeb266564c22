// Package service owns the lifecycle of one gaze tracking session: the page
// classification, the generator, the queue and the worker that sit between a
// gaze sensor and a renderer.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eyeflow/internal/adapters/mq/queue"
	"github.com/okian/eyeflow/internal/adapters/mq/worker"
	"github.com/okian/eyeflow/internal/adapters/renderer"
	"github.com/okian/eyeflow/internal/adapters/sensor"
	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/internal/domain/page"
	"github.com/okian/eyeflow/internal/domain/scroll"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

const (
	defaultQueueSize = 1
	stopTimeout      = 5 * time.Second
)

// RendererFactory builds the renderer for a classified page.
type RendererFactory func(ctx context.Context, t page.Type) (renderer.Renderer, error)

// run is everything that lives exactly as long as one Start/Stop cycle.
type run struct {
	id       string
	pageType page.Type
	queue    *queue.InMemoryQueue
	worker   *worker.InMemoryWorker
	ctx      context.Context
	cancel   context.CancelFunc

	// mu serialises sensor callbacks so every sample reaches the generator
	// in arrival order. stopped is set by Stop under mu.
	mu        sync.Mutex
	generator *scroll.Generator
	stopped   bool
}

// Session connects a gaze sensor to a renderer for one page.
type Session struct {
	mu sync.Mutex

	// Collaborators
	sensor      sensor.Sensor
	broadcaster *sensor.Broadcaster
	renderer    renderer.Renderer
	factory     RendererFactory
	inspector   page.Inspector
	settings    *Settings

	// Configuration
	genOpts   []scroll.Option
	queueSize int

	// State. current is nil whenever the session is stopped; the sensor
	// callback checks it before touching anything else.
	current    atomic.Pointer[run]
	last       *run
	registered bool

	samples    atomic.Uint64
	signals    atomic.Uint64
	applied    atomic.Uint64
	stale      atomic.Uint64
	lastDeltaY atomic.Uint64

	logger logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSensor sets the gaze source the session listens to.
func WithSensor(sen sensor.Sensor) Option {
	return func(s *Session) {
		if sen != nil {
			s.sensor = sen
		}
	}
}

// WithBroadcaster sets the broadcaster Publish feeds. It also becomes the
// sensor unless WithSensor names another one, in which case the session
// listens to both.
func WithBroadcaster(b *sensor.Broadcaster) Option {
	return func(s *Session) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

// WithRenderer uses r for every page type.
func WithRenderer(r renderer.Renderer) Option {
	return func(s *Session) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithRendererFactory builds a renderer per Start from the classified page type.
// It takes precedence over WithRenderer.
func WithRendererFactory(f RendererFactory) Option {
	return func(s *Session) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithInspector sets where page facts come from. Without one every page is Web.
func WithInspector(p page.Inspector) Option {
	return func(s *Session) {
		s.inspector = p
	}
}

// WithGeneratorOptions passes options to every generator the session creates.
func WithGeneratorOptions(opts ...scroll.Option) Option {
	return func(s *Session) {
		s.genOpts = append(s.genOpts, opts...)
	}
}

// WithQueueSize sets how many scroll signals may wait for the renderer.
func WithQueueSize(size int) Option {
	return func(s *Session) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSettings shares user settings with the session.
func WithSettings(st *Settings) Option {
	return func(s *Session) {
		if st != nil {
			s.settings = st
		}
	}
}

// New constructs a Session. Nothing runs until Start.
func New(opts ...Option) *Session {
	s := &Session{
		queueSize: defaultQueueSize,
		settings:  NewSettings(DefaultScrollSpeed),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.broadcaster == nil {
		s.broadcaster = sensor.NewBroadcaster("http")
	}
	if s.sensor == nil {
		s.sensor = s.broadcaster
	}

	return s
}

// Start classifies the page and starts the control loop. Calling Start on a
// started session does nothing.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Load() != nil {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("session")
	}

	pageType := page.Classify(ctx, s.inspector)

	r, err := s.buildRenderer(ctx, pageType)
	if err != nil {
		return err
	}

	speed := s.settings.ScrollSpeed()
	genOpts := append(append([]scroll.Option{}, s.genOpts...), scroll.WithSpeedMultiplier(speed))
	gen := scroll.New(genOpts...)

	// The loop must outlive request-scoped contexts that call Start.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	w := worker.NewInMemoryWorker(q, r,
		worker.WithName("scroll"),
		worker.WithObserver(s.observe),
	)

	cur := &run{
		id:        uuid.NewString(),
		pageType:  pageType,
		generator: gen,
		queue:     q,
		worker:    w,
		ctx:       runCtx,
		cancel:    cancel,
	}

	s.lastDeltaY.Store(0)
	w.Start(runCtx)
	s.current.Store(cur)
	s.last = cur

	if !s.registered {
		s.sensor.OnGazeUpdate(s.onGaze)
		if sensor.Sensor(s.broadcaster) != s.sensor {
			s.broadcaster.OnGazeUpdate(s.onGaze)
		}
		s.registered = true
	}

	metrics.SessionStarted()
	cfg := gen.Config()
	s.logger.Info(ctx, "session started",
		logger.String("sessionID", cur.id),
		logger.String("pageType", pageType.String()),
		logger.Float64("scrollZoneFraction", cfg.ScrollZoneFraction),
		logger.Float64("maxScrollSpeed", cfg.MaxScrollSpeed),
		logger.Float64("smoothingFactor", cfg.SmoothingFactor),
		logger.Float64("scrollSpeed", speed),
	)

	return nil
}

func (s *Session) buildRenderer(ctx context.Context, t page.Type) (renderer.Renderer, error) {
	if s.factory != nil {
		r, err := s.factory(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("build renderer for %s page: %w", t, err)
		}
		if r == nil {
			return nil, ErrNoRenderer
		}
		return r, nil
	}
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	return s.renderer, nil
}

// Stop tears the control loop down. Sensor callbacks that arrive afterwards
// are dropped. Calling Stop on a stopped session does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Swap(nil)
	if cur == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	// Wait for an in-flight callback, then make later ones stale.
	cur.mu.Lock()
	cur.stopped = true
	cur.generator = nil
	cur.mu.Unlock()

	if err := cur.worker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker did not stop in time", logger.Error(err))
	}
	cur.cancel()
	_ = cur.queue.Close()

	metrics.SessionStopped()
	s.logger.Info(ctx, "session stopped",
		logger.String("sessionID", cur.id),
		logger.Int("stale", int(s.stale.Load())),
	)
}

// Restart stops and starts the session so new settings take effect.
func (s *Session) Restart(ctx context.Context) error {
	s.Stop()
	metrics.RecordSessionRestart()
	return s.Start(ctx)
}

// Publish feeds a gaze sample into the session broadcaster.
func (s *Session) Publish(_ context.Context, g model.GazeData) error {
	if s.current.Load() == nil {
		return ErrStopped
	}
	if s.broadcaster == nil {
		return ErrNoGazeReceiver
	}
	s.broadcaster.Publish(g)
	return nil
}

// onGaze is the sensor callback. It may fire concurrently from several
// sources, and after Stop from work that was already in flight. Every sample
// it accepts advances the generator; only the signals queued for the renderer
// may be superseded.
func (s *Session) onGaze(g model.GazeData) {
	cur := s.current.Load()
	if cur == nil {
		s.dropStale()
		return
	}

	cur.mu.Lock()
	defer cur.mu.Unlock()

	if cur.stopped {
		s.dropStale()
		return
	}

	sig := cur.generator.ComputeScrollSignal(g)
	s.samples.Add(1)
	s.signals.Add(1)
	s.lastDeltaY.Store(math.Float64bits(sig.DeltaY))
	metrics.RecordScrollSignal(sig.DeltaY)

	// Enqueue under mu keeps queue order equal to generator order.
	cur.queue.Enqueue(cur.ctx, sig)
}

func (s *Session) dropStale() {
	s.stale.Add(1)
	metrics.RecordGazeStale()
}

func (s *Session) observe(model.ScrollSignal) {
	s.applied.Add(1)
}

// ID returns the id of the current or most recent run.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return ""
	}
	return s.last.id
}

// PageType returns the page type chosen at the last Start.
func (s *Session) PageType() page.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return page.Web
	}
	return s.last.pageType
}

// Started reports whether the control loop is running.
func (s *Session) Started() bool {
	return s.current.Load() != nil
}

// ScrollSpeed returns the user scroll speed multiplier.
func (s *Session) ScrollSpeed() float64 {
	return s.settings.ScrollSpeed()
}

// ApplyScrollSpeed stores v and, when tracking is running, restarts it so the
// generator picks the new speed up. If the restart fails the previous speed is
// restored and tracking is started again with it.
func (s *Session) ApplyScrollSpeed(ctx context.Context, v float64) error {
	prev := s.settings.ScrollSpeed()
	if err := s.settings.SetScrollSpeed(v); err != nil {
		return err
	}
	if !s.Started() {
		return nil
	}

	err := s.Restart(ctx)
	if err == nil {
		return nil
	}

	err = fmt.Errorf("apply scroll speed %v: %w", v, err)
	_ = s.settings.SetScrollSpeed(prev)
	if rerr := s.Start(ctx); rerr != nil {
		return errors.Join(err, fmt.Errorf("restore scroll speed %v: %w", prev, rerr))
	}

	s.logger.Warn(ctx, "scroll speed rejected, previous speed restored",
		logger.Float64("scrollSpeed", prev),
		logger.Error(err),
	)
	return err
}

// Settings returns the user settings the session reads on Start.
func (s *Session) Settings() *Settings {
	return s.settings
}

// LastDeltaY returns the most recently computed scroll delta.
func (s *Session) LastDeltaY() float64 {
	return math.Float64frombits(s.lastDeltaY.Load())
}

// GetStats returns session statistics for monitoring.
func (s *Session) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	cur := s.current.Load()
	stats := map[string]interface{}{
		"started":     cur != nil,
		"queueSize":   s.queueSize,
		"scrollSpeed": s.settings.ScrollSpeed(),
		"lastDeltaY":  s.LastDeltaY(),
		"samples":     s.samples.Load(),
		"signals":     s.signals.Load(),
		"applied":     s.applied.Load(),
		"stale":       s.stale.Load(),
		"listeners":   s.broadcaster.Listeners(),
	}

	if s.last != nil {
		stats["sessionID"] = s.last.id
		stats["pageType"] = s.last.pageType.String()
	}

	if cur != nil {
		stats["queueLength"] = cur.queue.Len(ctx)
		stats["superseded"] = cur.queue.Superseded()
		stats["maxScrollSpeed"] = cur.generator.Config().MaxScrollSpeed
	}

	return stats
}
