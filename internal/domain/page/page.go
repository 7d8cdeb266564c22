// Package page decides which scroll renderer a loaded document needs.
package page

import (
	"context"
	"strings"
)

// Type identifies the kind of document being read.
type Type string

const (
	// Web is an ordinary scrollable document.
	Web Type = "WEB"
	// PDF is a document shown inside an embedded PDF viewer.
	PDF Type = "PDF"
)

const (
	pdfMIME   = "application/pdf"
	pdfSuffix = ".pdf"
)

// Embed is one embed or object element found on the page.
type Embed struct {
	Type string
	Src  string
}

// Inspector exposes the page facts the classifier looks at.
type Inspector interface {
	// ContentType returns the main document content type, or "".
	ContentType(ctx context.Context) string
	// Embeds returns every embed and object element on the page.
	Embeds(ctx context.Context) []Embed
	// URL returns the current document URL.
	URL(ctx context.Context) string
}

// Classify returns PDF when the content type, an embedded viewer or the URL
// marks the page as a PDF, and Web otherwise.
func Classify(ctx context.Context, in Inspector) Type {
	if in == nil {
		return Web
	}

	if isPDFType(in.ContentType(ctx)) {
		return PDF
	}

	for _, e := range in.Embeds(ctx) {
		if isPDFType(e.Type) || strings.HasSuffix(strings.ToLower(strings.TrimSpace(e.Src)), pdfSuffix) {
			return PDF
		}
	}

	if strings.Contains(strings.ToLower(in.URL(ctx)), pdfSuffix) {
		return PDF
	}

	return Web
}

// isPDFType ignores case and media type parameters such as charset.
func isPDFType(contentType string) bool {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mt), pdfMIME)
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Static is a fixed Inspector, used when page facts are already known.
type Static struct {
	MIME    string
	Objects []Embed
	Address string
}

// ContentType implements Inspector.
func (s Static) ContentType(context.Context) string { return s.MIME }

// Embeds implements Inspector.
func (s Static) Embeds(context.Context) []Embed { return s.Objects }

// URL implements Inspector.
func (s Static) URL(context.Context) string { return s.Address }
