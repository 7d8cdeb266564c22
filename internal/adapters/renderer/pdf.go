package renderer

import (
	"context"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

const (
	pdfName = "pdf"

	// ViewerSelector matches the scrollable element of common embedded PDF viewers.
	ViewerSelector = ".pdfViewer, #viewerContainer, embed[type='application/pdf']"

	hasViewerJS    = `(sel) => document.querySelector(sel) !== null`
	scrollViewerJS = `([sel, dy]) => {
	const el = document.querySelector(sel);
	if (el) {
		el.scrollBy({ top: dy, left: 0, behavior: "auto" });
		return true;
	}
	window.scrollBy({ top: dy, left: 0, behavior: "auto" });
	return false;
}`
)

// PdfRenderer scrolls an embedded PDF viewer, or the window when the page has none.
type PdfRenderer struct {
	page      Page
	opts      options
	container bool
}

// NewPdfRenderer looks for the viewer container once. Pages without one fall
// back to window scrolling for the life of the renderer.
func NewPdfRenderer(ctx context.Context, p Page, opts ...Option) *PdfRenderer {
	r := &PdfRenderer{page: p, opts: buildOptions(pdfName, opts)}

	found, err := p.Evaluate(hasViewerJS, ViewerSelector)
	if err != nil {
		metrics.RecordRendererError(pdfName)
		r.opts.logger.Warn(ctx, "viewer lookup failed, scrolling the window", logger.Error(err))
		return r
	}
	r.container, _ = found.(bool)
	if !r.container {
		r.opts.logger.Info(ctx, "no pdf viewer container, scrolling the window")
	}
	return r
}

// HasContainer reports whether a viewer container was found.
func (r *PdfRenderer) HasContainer() bool { return r.container }

// ApplyScroll implements Renderer.
func (r *PdfRenderer) ApplyScroll(ctx context.Context, signal model.ScrollSignal) {
	dy := signal.DeltaY * r.opts.multiplier

	var err error
	if r.container {
		_, err = r.page.Evaluate(scrollViewerJS, []interface{}{ViewerSelector, dy})
	} else {
		_, err = r.page.Evaluate(scrollWindowJS, dy)
	}
	if err != nil {
		metrics.RecordRendererError(pdfName)
		r.opts.logger.Warn(ctx, "scroll failed",
			logger.Float64("deltaY", dy),
			logger.Bool("container", r.container),
			logger.Error(err),
		)
	}
}
