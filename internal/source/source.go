// Package source turns PDF files into the positioned text runs consumed by
// the outline classifier.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// ErrSourceUnavailable is returned when a document cannot be read at all:
// missing file, corrupt structure, or a reader panic.
var ErrSourceUnavailable = errors.New("source unavailable")

// Backend names accepted by New.
const (
	BackendRSC        = "rsc"
	BackendLedongthuc = "ledongthuc"
)

// Source reads one document into an element stream.
type Source interface {
	Read(ctx context.Context, path string) (outline.Document, error)
}

// Options configure every backend.
type Options struct {
	// MaxPages truncates longer documents. Zero reads every page.
	MaxPages int
	Logger   *slog.Logger
}

// New returns the backend registered under name.
func New(name string, opts Options) (Source, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch name {
	case "", BackendRSC:
		return &rscSource{opts: opts}, nil
	case BackendLedongthuc:
		return &ledongthucSource{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", name)
	}
}

// pdfDoc is the per-backend view of an opened file.
type pdfDoc interface {
	NumPage() int
	// page returns the glyphs and the media box of page i (1-based). ok is
	// false for pages the backend cannot resolve.
	page(i int) (glyphs []glyph, box pageBox, ok bool)
}

// pageCount probes the file with pdfcpu before the text backend touches it.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: page count: %v", ErrSourceUnavailable, err)
	}
	return n, nil
}

// limit returns how many pages to read, logging when the document is cut.
func (o Options) limit(path string, n int) int {
	if o.MaxPages > 0 && n > o.MaxPages {
		o.Logger.Warn("document truncated", "path", path, "pages", n, "max_pages", o.MaxPages)
		return o.MaxPages
	}
	return n
}

// extract walks the first pages of doc and lays out their glyphs.
func extract(ctx context.Context, doc pdfDoc, pages int) (outline.Document, error) {
	out := outline.Document{PageWidths: make(map[int]float64)}
	if n := doc.NumPage(); n < pages {
		pages = n
	}
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return outline.Document{}, err
		}
		glyphs, box, ok := doc.page(i)
		if !ok {
			continue
		}
		out.PageWidths[i] = box.width()
		out.Elements = append(out.Elements, layoutPage(glyphs, i, box)...)
	}
	return out, nil
}

// guard converts a reader panic into ErrSourceUnavailable.
func guard(path string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, r)
	}
}
