package renderer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/eyeflow/internal/adapters/renderer"
	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/internal/domain/page"
	"github.com/okian/eyeflow/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type call struct {
	expr string
	arg  interface{}
}

type fakePage struct {
	mu       sync.Mutex
	calls    []call
	hasViewer bool
	err      error
}

func (p *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var a interface{}
	if len(arg) > 0 {
		a = arg[0]
	}
	p.calls = append(p.calls, call{expr: expression, arg: a})
	if p.err != nil {
		return nil, p.err
	}
	if a == renderer.ViewerSelector {
		return p.hasViewer, nil
	}
	return nil, nil
}

func (p *fakePage) last() call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

func TestWebRenderer(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a web renderer", t, func() {
		p := &fakePage{}
		r := renderer.NewWebRenderer(p)

		Convey("When a signal is applied", func() {
			r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: -6})

			Convey("Then the window is scrolled by deltaY", func() {
				So(p.calls, ShouldHaveLength, 1)
				So(p.last().expr, ShouldContainSubstring, "window.scrollBy")
				So(p.last().arg, ShouldEqual, -6.0)
			})
		})

		Convey("When a multiplier is configured", func() {
			r := renderer.NewWebRenderer(p, renderer.WithMultiplier(2))
			r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 3})

			Convey("Then the delta is scaled", func() {
				So(p.last().arg, ShouldEqual, 6.0)
			})
		})

		Convey("When the page errors", func() {
			p.err = errors.New("target closed")

			Convey("Then ApplyScroll swallows it", func() {
				So(func() { r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 1}) }, ShouldNotPanic)
			})
		})
	})
}

func TestPdfRenderer(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a PDF page with a viewer container", t, func() {
		p := &fakePage{hasViewer: true}
		r := renderer.NewPdfRenderer(ctx, p)

		Convey("Then the container is resolved once at construction", func() {
			So(r.HasContainer(), ShouldBeTrue)
			So(p.calls, ShouldHaveLength, 1)
		})

		Convey("When a signal is applied", func() {
			r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 12.5})

			Convey("Then the container element is scrolled", func() {
				last := p.last()
				So(last.expr, ShouldContainSubstring, "el.scrollBy")
				So(last.arg, ShouldResemble, []interface{}{renderer.ViewerSelector, 12.5})
			})
		})
	})

	Convey("Given a PDF page without a viewer container", t, func() {
		p := &fakePage{}
		r := renderer.NewPdfRenderer(ctx, p)

		Convey("When a signal is applied", func() {
			r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 4})

			Convey("Then it falls back to scrolling the window", func() {
				So(r.HasContainer(), ShouldBeFalse)
				So(p.last().expr, ShouldContainSubstring, "window.scrollBy")
				So(p.last().arg, ShouldEqual, 4.0)
			})
		})
	})

	Convey("Given a page whose viewer lookup fails", t, func() {
		p := &fakePage{err: errors.New("detached")}
		r := renderer.NewPdfRenderer(ctx, p)

		Convey("Then the renderer still builds and uses the window", func() {
			So(r.HasContainer(), ShouldBeFalse)
			So(func() { r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 1}) }, ShouldNotPanic)
		})
	})
}

func TestSelect(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a classified page", t, func() {
		p := &fakePage{hasViewer: true}

		Convey("When it is a PDF", func() {
			r := renderer.Select(ctx, page.PDF, p)

			Convey("Then a PdfRenderer is built", func() {
				_, ok := r.(*renderer.PdfRenderer)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When it is anything else", func() {
			web := renderer.Select(ctx, page.Web, p)
			unknown := renderer.Select(ctx, page.Type(""), p)

			Convey("Then a WebRenderer is built", func() {
				_, ok := web.(*renderer.WebRenderer)
				So(ok, ShouldBeTrue)
				_, ok = unknown.(*renderer.WebRenderer)
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given a plain function", t, func() {
		var got float64
		r := renderer.Func(func(_ context.Context, s model.ScrollSignal) { got = s.DeltaY })
		r.ApplyScroll(ctx, model.ScrollSignal{DeltaY: 7})

		Convey("Then it acts as a renderer", func() {
			So(got, ShouldEqual, 7)
		})
	})
}
