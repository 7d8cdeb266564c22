package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the default namespace and subsystem", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "eyeflow")
				So(manager.subsystem, ShouldEqual, "scroll")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("gaze"),
				WithHistogramBuckets([]float64{1, 2}),
				WithDeltaBuckets([]float64{-1, 0, 1}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "gaze")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2})
				So(manager.deltaBuckets, ShouldResemble, []float64{-1, 0, 1})
			})

			Convey("And empty option values keep the defaults", func() {
				m := NewManager(WithNamespace(""), WithPrometheusRegistry(prometheus.NewRegistry()))
				So(m.namespace, ShouldEqual, "eyeflow")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording scroll signals", func() {
			before := testutil.ToFloat64(globalManager.scrollSignals)
			RecordScrollSignal(-6)
			RecordScrollSignal(-10.8)

			Convey("Then the counter and last delta gauge move", func() {
				So(testutil.ToFloat64(globalManager.scrollSignals), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.scrollLastDelta), ShouldEqual, -10.8)
			})
		})

		Convey("When recording gaze samples by source", func() {
			before := testutil.ToFloat64(globalManager.gazeSamples.WithLabelValues("http"))
			RecordGazeSample("http")

			Convey("Then the labelled counter increments", func() {
				So(testutil.ToFloat64(globalManager.gazeSamples.WithLabelValues("http")), ShouldEqual, before+1)
			})
		})

		Convey("When sessions start and stop", func() {
			before := testutil.ToFloat64(globalManager.sessionsActive)
			SessionStarted()
			SessionStarted()
			SessionStopped()

			Convey("Then the gauge tracks the balance", func() {
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, before+1)
			})
			SessionStopped()
		})

		Convey("When recording sensor frames", func() {
			frames := testutil.ToFloat64(globalManager.sensorFrames)
			faces := testutil.ToFloat64(globalManager.sensorFacesFound)
			RecordSensorFrame(true)
			RecordSensorFrame(false)

			Convey("Then only frames with a face count as found", func() {
				So(testutil.ToFloat64(globalManager.sensorFrames), ShouldEqual, frames+2)
				So(testutil.ToFloat64(globalManager.sensorFacesFound), ShouldEqual, faces+1)
			})
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				RecordSignalSuperseded()
				RecordGazeStale()
				RecordRendererError("web")
				RecordSessionRestart()
				UpdateQueueSize(1)
				UpdateQueueCapacity(1)
				RecordWorkerProcessingLatency(0.5)
				RecordHTTPRequest("gaze", "POST", "202")
				RecordHTTPRequestDuration("gaze", "POST", "202", 1)
				RecordErrorByComponent("renderer", "evaluate")
				RecordErrorByEndpoint("gaze", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(4)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordScrollSignal(1)
		families, err := GetRegistry().Gather()

		Convey("Then it exposes eyeflow series only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "eyeflow_scroll_"), ShouldBeTrue)
			}
		})
	})
}
