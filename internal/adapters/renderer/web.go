package renderer

import (
	"context"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

const (
	webName = "web"

	scrollWindowJS = `(dy) => window.scrollBy({ top: dy, left: 0, behavior: "auto" })`
)

// WebRenderer scrolls the top-level document.
type WebRenderer struct {
	page Page
	opts options
}

// NewWebRenderer returns a renderer that scrolls the window of p.
func NewWebRenderer(p Page, opts ...Option) *WebRenderer {
	return &WebRenderer{page: p, opts: buildOptions(webName, opts)}
}

// ApplyScroll implements Renderer.
func (r *WebRenderer) ApplyScroll(ctx context.Context, signal model.ScrollSignal) {
	dy := signal.DeltaY * r.opts.multiplier
	if _, err := r.page.Evaluate(scrollWindowJS, dy); err != nil {
		metrics.RecordRendererError(webName)
		r.opts.logger.Warn(ctx, "scroll failed", logger.Float64("deltaY", dy), logger.Error(err))
	}
}
