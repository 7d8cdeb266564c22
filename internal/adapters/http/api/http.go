// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/eyeflow/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Publish feeds one gaze sample into the running session.
	Publish(ctx context.Context, g model.GazeData) error

	// ScrollSpeed returns the user scroll speed multiplier.
	ScrollSpeed() float64

	// ApplyScrollSpeed stores a new multiplier and restarts tracking with it.
	ApplyScrollSpeed(ctx context.Context, v float64) error

	StatsProvider
}

// Server wires HTTP routes for the gaze API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	gazeHandler     *GazeHandler
	settingsHandler *SettingsHandler
	stream          http.Handler
}

// ServerOption configures optional routes.
type ServerOption func(*Server)

// WithStream serves h on /ws.
func WithStream(h http.Handler) ServerOption {
	return func(s *Server) {
		s.stream = h
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		gazeHandler:     NewGazeHandler(deps),
		settingsHandler: NewSettingsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/gaze", MetricsMiddleware(s.gazeHandler.HandlePostGaze, "gaze"))
	mux.HandleFunc("/settings", MetricsMiddleware(s.settingsHandler.HandleSettings, "settings"))
	if s.stream != nil {
		// Not wrapped: the middleware's writer cannot be hijacked.
		mux.Handle("/ws", s.stream)
	}
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
