package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/eyeflow/internal/adapters/http/api"
	"github.com/okian/eyeflow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var errNotRunning = errors.New("not running")

// mockDeps records what the handlers hand over.
type mockDeps struct {
	mu        sync.Mutex
	running   bool
	published []model.GazeData
	speed     float64
	applyErr  error
}

func (m *mockDeps) Publish(_ context.Context, g model.GazeData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return errNotRunning
	}
	m.published = append(m.published, g)
	return nil
}

func (m *mockDeps) ScrollSpeed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *mockDeps) ApplyScrollSpeed(_ context.Context, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.speed = v
	return nil
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": m.running, "lastDeltaY": -6.0}
}

func newMux(deps *mockDeps, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestGazeEndpoint(t *testing.T) {
	Convey("Given a running session behind the API", t, func() {
		deps := &mockDeps{running: true, speed: 1}
		mux := newMux(deps)

		Convey("When a valid sample is posted", func() {
			rec := do(mux, http.MethodPost, "/gaze", `{"x":0.4,"y":0.05,"confidence":1}`)

			Convey("Then it is accepted and published", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(decode(rec)["status"], ShouldEqual, "accepted")
				So(deps.published, ShouldResemble, []model.GazeData{{X: 0.4, Y: 0.05, Confidence: 1}})
			})
		})

		Convey("When confidence is omitted", func() {
			rec := do(mux, http.MethodPost, "/gaze", `{"x":0.5,"y":0.9}`)

			Convey("Then it defaults to a detected face", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.published[0].Confidence, ShouldEqual, 1)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := do(mux, http.MethodPost, "/gaze", `not json`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "bad_request")
				So(deps.published, ShouldBeEmpty)
			})
		})

		Convey("When y is missing", func() {
			rec := do(mux, http.MethodPost, "/gaze", `{"x":0.5}`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["message"], ShouldContainSubstring, "missing y")
			})
		})

		Convey("When the method is wrong", func() {
			rec := do(mux, http.MethodGet, "/gaze", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a stopped session", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When a sample is posted", func() {
			rec := do(mux, http.MethodPost, "/gaze", `{"x":0.5,"y":0.5}`)

			Convey("Then the API reports it unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode(rec)["message"], ShouldContainSubstring, "not running")
			})
		})
	})
}

func TestSettingsEndpoint(t *testing.T) {
	Convey("Given the settings API", t, func() {
		deps := &mockDeps{running: true, speed: 1}
		mux := newMux(deps)

		Convey("When settings are read", func() {
			rec := do(mux, http.MethodGet, "/settings", "")

			Convey("Then the scroll speed is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["scrollSpeed"], ShouldEqual, 1.0)
			})
		})

		Convey("When a new scroll speed is set", func() {
			rec := do(mux, http.MethodPut, "/settings", `{"value":1.5}`)

			Convey("Then it is applied", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["success"], ShouldEqual, true)
				So(deps.ScrollSpeed(), ShouldEqual, 1.5)
			})
		})

		Convey("When a non-positive speed is set", func() {
			rec := do(mux, http.MethodPut, "/settings", `{"value":0}`)

			Convey("Then it is rejected and nothing changes", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.ScrollSpeed(), ShouldEqual, 1.0)
			})
		})

		Convey("When the value is missing", func() {
			rec := do(mux, http.MethodPut, "/settings", `{}`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When applying fails", func() {
			deps.applyErr = errors.New("restart failed")
			rec := do(mux, http.MethodPut, "/settings", `{"value":2}`)

			Convey("Then the API reports it unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux(&mockDeps{running: true})

		Convey("When stats are requested", func() {
			rec := do(mux, http.MethodGet, "/stats", "")

			Convey("Then session stats are returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(decode(rec)["lastDeltaY"], ShouldEqual, -6.0)
			})
		})

		Convey("When health is requested after some traffic", func() {
			do(mux, http.MethodGet, "/stats", "")
			rec := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then Prometheus metrics are served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "eyeflow_scroll_http_requests_total")
			})
		})
	})
}

func TestStreamRoute(t *testing.T) {
	Convey("Given a stream handler", t, func() {
		called := false
		stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		})

		Convey("When /ws is requested", func() {
			rec := do(newMux(&mockDeps{}, api.WithStream(stream)), http.MethodGet, "/ws", "")

			Convey("Then the stream handler serves it", func() {
				So(called, ShouldBeTrue)
				So(rec.Code, ShouldEqual, http.StatusTeapot)
			})
		})

		Convey("When no stream is configured", func() {
			rec := do(newMux(&mockDeps{}), http.MethodGet, "/ws", "")

			Convey("Then /ws does not exist", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
		})

		Convey("And a bare kind error only carries the kind", func() {
			bare := api.NewKind("api.op", api.ErrUnavailable)
			So(errors.Is(bare, api.ErrUnavailable), ShouldBeTrue)
			So(bare.Error(), ShouldEqual, "api.op: tracking unavailable")
		})
	})
}
