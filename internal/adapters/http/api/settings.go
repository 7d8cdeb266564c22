package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SettingsStore reads and applies the user scroll speed.
type SettingsStore interface {
	ScrollSpeed() float64
	ApplyScrollSpeed(ctx context.Context, v float64) error
}

type settingsResponse struct {
	ScrollSpeed float64 `json:"scrollSpeed"`
}

type setScrollSpeedRequest struct {
	Value *float64 `json:"value"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// SettingsHandler serves GET and PUT /settings.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// HandleSettings dispatches on method.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settingsResponse{ScrollSpeed: h.store.ScrollSpeed()})
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SettingsHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_scroll_speed"

	var req setScrollSpeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Value == nil || *req.Value <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("value must be a positive number")))
		return
	}

	if err := h.store.ApplyScrollSpeed(r.Context(), *req.Value); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
