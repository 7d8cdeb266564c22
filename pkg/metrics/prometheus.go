// Package metrics provides Prometheus metrics for the EyeFlow gaze-scroll service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	deltaBuckets     []float64
	registry         prometheus.Registerer

	// Control loop
	gazeSamples      *prometheus.CounterVec
	signalSuperseded prometheus.Counter
	gazeStale        prometheus.Counter
	scrollSignals    prometheus.Counter
	scrollDelta      prometheus.Histogram
	scrollLastDelta  prometheus.Gauge
	rendererErrors   *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
	sessionRestarts  prometheus.Counter
	sensorFrames     prometheus.Counter
	sensorFacesFound prometheus.Counter

	// Queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge

	// Worker
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eyeflow",
		subsystem:        "scroll",
		histogramBuckets: prometheus.DefBuckets,
		deltaBuckets:     []float64{-30, -20, -10, -5, -1, 0, 1, 5, 10, 20, 30},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.gazeSamples = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gaze_samples_total",
		Help:      "Gaze samples received, by sensor source",
	}, []string{"source"})

	m.signalSuperseded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_superseded_total",
		Help:      "Pending scroll signals discarded before rendering because a newer one arrived",
	})

	m.gazeStale = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gaze_stale_total",
		Help:      "Gaze callbacks that fired after their session stopped",
	})

	m.scrollSignals = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_total",
		Help:      "Scroll signals produced by the generator",
	})

	m.scrollDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_pixels",
		Help:      "Distribution of emitted scroll deltas in pixels",
		Buckets:   m.deltaBuckets,
	})

	m.scrollLastDelta = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_delta_pixels",
		Help:      "Most recent scroll delta in pixels",
	})

	m.rendererErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "renderer_errors_total",
		Help:      "Scroll applications that failed at the renderer boundary",
	}, []string{"renderer"})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Tracking sessions currently started",
	})

	m.sessionRestarts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_restarts_total",
		Help:      "Session restarts triggered by settings changes",
	})

	m.sensorFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sensor_frames_total",
		Help:      "Camera frames processed by the face detector",
	})

	m.sensorFacesFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sensor_frames_with_face_total",
		Help:      "Camera frames in which at least one face was detected",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Gaze samples waiting for the worker",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum gaze samples held before superseding",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time from dequeue to renderer return in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordGazeSample counts one gaze sample from the named source.
func RecordGazeSample(source string) {
	globalManager.gazeSamples.WithLabelValues(source).Inc()
}

// RecordSignalSuperseded counts a pending scroll signal replaced by a newer one.
func RecordSignalSuperseded() {
	globalManager.signalSuperseded.Inc()
}

// RecordGazeStale counts a sensor callback that arrived after teardown.
func RecordGazeStale() {
	globalManager.gazeStale.Inc()
}

// RecordScrollSignal records one emitted scroll signal.
func RecordScrollSignal(deltaY float64) {
	globalManager.scrollSignals.Inc()
	globalManager.scrollDelta.Observe(deltaY)
	globalManager.scrollLastDelta.Set(deltaY)
}

// RecordRendererError counts a failed scroll application for a renderer variant.
func RecordRendererError(renderer string) {
	globalManager.rendererErrors.WithLabelValues(renderer).Inc()
}

// SessionStarted increments the active session gauge.
func SessionStarted() {
	globalManager.sessionsActive.Inc()
}

// SessionStopped decrements the active session gauge.
func SessionStopped() {
	globalManager.sessionsActive.Dec()
}

// RecordSessionRestart counts a session restart.
func RecordSessionRestart() {
	globalManager.sessionRestarts.Inc()
}

// RecordSensorFrame counts a processed camera frame and whether it had a face.
func RecordSensorFrame(faceFound bool) {
	globalManager.sensorFrames.Inc()
	if faceFound {
		globalManager.sensorFacesFound.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
