package stream

import (
	"context"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

// StreamRenderer hands every signal to websocket subscribers instead of
// scrolling a page in-process.
type StreamRenderer struct {
	hub *Hub
}

// NewRenderer returns a renderer that publishes through hub.
func NewRenderer(hub *Hub) *StreamRenderer {
	return &StreamRenderer{hub: hub}
}

// ApplyScroll implements renderer.Renderer.
func (r *StreamRenderer) ApplyScroll(ctx context.Context, signal model.ScrollSignal) {
	if err := r.hub.BroadcastJSON(signal); err != nil {
		metrics.RecordRendererError("stream")
		r.hub.log.Warn(ctx, "encode scroll signal", logger.Error(err))
	}
}
