package source

import (
	"context"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

type ledongthucSource struct {
	opts Options
}

func (s *ledongthucSource) Read(ctx context.Context, path string) (doc outline.Document, err error) {
	n, err := pageCount(path)
	if err != nil {
		return outline.Document{}, err
	}
	pages := s.opts.limit(path, n)

	defer guard(path, &err)
	f, r, err := pdflib.Open(path)
	if err != nil {
		return outline.Document{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()
	return extract(ctx, ledongthucDoc{r}, pages)
}

type ledongthucDoc struct {
	r *pdflib.Reader
}

func (d ledongthucDoc) NumPage() int { return d.r.NumPage() }

func (d ledongthucDoc) page(i int) ([]glyph, pageBox, bool) {
	p := d.r.Page(i)
	if p.V.IsNull() {
		return nil, pageBox{}, false
	}
	text := p.Content().Text
	glyphs := make([]glyph, 0, len(text))
	for _, t := range text {
		glyphs = append(glyphs, glyph{font: t.Font, size: t.FontSize, x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return glyphs, mediaBox(p.V), true
}
