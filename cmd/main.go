package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/eyeflow/internal/adapters/browser"
	"github.com/okian/eyeflow/internal/adapters/http/api"
	"github.com/okian/eyeflow/internal/adapters/http/site"
	"github.com/okian/eyeflow/internal/adapters/http/stream"
	"github.com/okian/eyeflow/internal/adapters/http/swagger"
	"github.com/okian/eyeflow/internal/adapters/renderer"
	"github.com/okian/eyeflow/internal/adapters/sensor"
	"github.com/okian/eyeflow/internal/adapters/sensor/camera"
	service "github.com/okian/eyeflow/internal/app"
	"github.com/okian/eyeflow/internal/config"
	"github.com/okian/eyeflow/internal/domain/page"
	"github.com/okian/eyeflow/internal/domain/scroll"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our own system gauges replace the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "eyeflow stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// app holds the wired components of one process.
type app struct {
	session  *service.Session
	hub      *stream.Hub
	http     *sensor.Broadcaster
	camera   *camera.Source
	browser  *browser.Manager
	handlers *http.ServeMux
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	go a.hub.Run(ctx)
	if a.camera != nil {
		go func() {
			if err := a.camera.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "camera stopped", logger.Error(err))
			}
		}()
	}

	if err := a.session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer a.session.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.session)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handlers,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("sensor", cfg.Sensor),
			logger.String("renderer", cfg.Renderer),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// build wires the sensor, renderer, session and routes selected by cfg.
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		hub:  stream.NewHub(),
		http: sensor.NewBroadcaster(config.SensorHTTP),
	}

	opts := []service.Option{
		service.WithBroadcaster(a.http),
		service.WithQueueSize(cfg.QueueSize),
		service.WithSettings(service.NewSettings(cfg.ScrollSpeed)),
		service.WithGeneratorOptions(
			scroll.WithScrollZoneFraction(cfg.ScrollZoneFraction),
			scroll.WithMaxScrollSpeed(cfg.MaxScrollSpeed),
			scroll.WithSmoothingFactor(cfg.SmoothingFactor),
		),
	}

	if cfg.Sensor == config.SensorCamera {
		src, err := camera.New(camera.Config{
			Device:    cfg.CameraDevice,
			ModelPath: cfg.ModelPath,
			MinScore:  cfg.DetectConfidence,
			Interval:  time.Duration(cfg.FrameIntervalMS) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		a.camera = src
		opts = append(opts, service.WithSensor(src))
	}

	switch cfg.Renderer {
	case config.RendererBrowser:
		a.browser = browser.NewManager()
		sess, err := a.browser.Launch(ctx, browser.Options{
			URL:      cfg.PageURL,
			Headless: cfg.Headless,
			Width:    cfg.ViewportWidth,
			Height:   cfg.ViewportHeight,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		opts = append(opts,
			service.WithInspector(sess.Inspector()),
			service.WithRendererFactory(func(ctx context.Context, t page.Type) (renderer.Renderer, error) {
				return renderer.Select(ctx, t, sess.Page()), nil
			}),
		)
	default:
		opts = append(opts, service.WithRenderer(stream.NewRenderer(a.hub)))
	}

	a.session = service.New(opts...)

	a.handlers = http.NewServeMux()
	api.NewServer(a.session, api.WithStream(a.hub)).Register(a.handlers)
	swagger.Register(a.handlers)
	site.Register(a.handlers)

	return a, nil
}

func (a *app) close() {
	if a.camera != nil {
		_ = a.camera.Close()
	}
	if a.browser != nil {
		_ = a.browser.Close()
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates session metrics.
func startServiceMetricsUpdater(ctx context.Context, s *service.Session) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(s)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(s *service.Session) {
	stats := s.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if size, ok := stats["queueSize"].(int); ok {
		metrics.UpdateQueueCapacity(size)
	}
}
