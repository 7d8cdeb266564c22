package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/eyeflow/internal/domain/model"
)

const maxGazeBody = 1 << 10

// GazePublisher accepts gaze samples.
type GazePublisher interface {
	Publish(ctx context.Context, g model.GazeData) error
}

// gazeRequest is the body of POST /gaze. Confidence defaults to 1: a client
// posting a sample has found a face.
type gazeRequest struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Confidence *float64 `json:"confidence"`
}

func (g gazeRequest) validate() error {
	switch {
	case g.X == nil:
		return errors.New("missing x")
	case g.Y == nil:
		return errors.New("missing y")
	}
	return nil
}

func (g gazeRequest) toModel() model.GazeData {
	out := model.GazeData{X: *g.X, Y: *g.Y, Confidence: 1}
	if g.Confidence != nil {
		out.Confidence = *g.Confidence
	}
	return out
}

// GazeHandler is the HTTP gaze sensor.
type GazeHandler struct {
	pub GazePublisher
}

// NewGazeHandler creates a new gaze handler.
func NewGazeHandler(pub GazePublisher) *GazeHandler {
	return &GazeHandler{pub: pub}
}

// HandlePostGaze handles POST /gaze requests.
func (h *GazeHandler) HandlePostGaze(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_gaze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req gazeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGazeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.pub.Publish(r.Context(), req.toModel()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
