package outline

import (
	"testing"
	"unicode/utf8"
)

const testPageWidth = 612

const bodyText = "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor"

// el builds a left-aligned run whose width follows its text length.
func el(text string, size float64, page int, top float64) TextElement {
	w := float64(utf8.RuneCountInString(text)) * size * 0.5
	return TextElement{
		Text:     text,
		FontName: "Helvetica",
		FontSize: size,
		Page:     page,
		BBox:     BBox{Left: 72, Top: top, Right: 72 + w, Bottom: top + size},
	}
}

func bold(e TextElement) TextElement {
	e.Bold = true
	e.FontName = "Helvetica-Bold"
	return e
}

// body returns n paragraph lines of size 10 starting at top.
func body(page int, top float64, n int) []TextElement {
	out := make([]TextElement, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, el(bodyText, 10, page, top+float64(i)*14))
	}
	return out
}

func doc(elems ...[]TextElement) Document {
	d := Document{PageWidths: map[int]float64{}}
	for _, group := range elems {
		for _, e := range group {
			d.Elements = append(d.Elements, e)
			d.PageWidths[e.Page] = testPageWidth
		}
	}
	return d
}

func one(e TextElement) []TextElement { return []TextElement{e} }

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func texts(hs []Heading) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Level.String() + " " + h.Text
	}
	return out
}
