package browser

import (
	"context"

	"github.com/playwright-community/playwright-go"

	"github.com/okian/eyeflow/internal/domain/page"
)

// Session is one open page.
type Session struct {
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	contentType string
}

// Page returns the live page. It satisfies renderer.Page.
func (s *Session) Page() playwright.Page { return s.page }

// Inspector returns the facts the page classifier needs.
func (s *Session) Inspector() page.Inspector { return inspector{s: s} }

func (s *Session) close() {
	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()
}

type inspector struct {
	s *Session
}

func (p inspector) ContentType(context.Context) string { return p.s.contentType }

func (p inspector) URL(context.Context) string { return p.s.page.URL() }

func (p inspector) Embeds(context.Context) []page.Embed {
	els, err := p.s.page.QuerySelectorAll("embed, object")
	if err != nil {
		return nil
	}
	out := make([]page.Embed, 0, len(els))
	for _, el := range els {
		typ, _ := el.GetAttribute("type")
		src, _ := el.GetAttribute("src")
		if src == "" {
			// <object> keeps its resource in data.
			src, _ = el.GetAttribute("data")
		}
		out = append(out, page.Embed{Type: typ, Src: src})
	}
	return out
}
