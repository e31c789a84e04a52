package source

import (
	"context"
	"fmt"
	"os"

	rpdf "rsc.io/pdf"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

type rscSource struct {
	opts Options
}

func (s *rscSource) Read(ctx context.Context, path string) (doc outline.Document, err error) {
	n, err := pageCount(path)
	if err != nil {
		return outline.Document{}, err
	}
	pages := s.opts.limit(path, n)

	f, err := os.Open(path)
	if err != nil {
		return outline.Document{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return outline.Document{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	defer guard(path, &err)
	r, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		return outline.Document{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return extract(ctx, rscDoc{r}, pages)
}

type rscDoc struct {
	r *rpdf.Reader
}

func (d rscDoc) NumPage() int { return d.r.NumPage() }

func (d rscDoc) page(i int) ([]glyph, pageBox, bool) {
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
