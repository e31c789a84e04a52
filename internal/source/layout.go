package source

import (
	"math"
	"sort"
	"strings"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// US Letter, used when a page has no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Grouping thresholds, as multiples of the font size.
const (
	rowToleranceRatio = 0.3  // baselines closer than this share a row
	spaceGapRatio     = 0.15 // a wider gap between glyphs is a word break
	splitGapRatio     = 3.0  // a wider gap starts a new run (column, table cell)
)

// glyph is one text-showing operation as reported by a PDF backend. y is
// the baseline measured from the bottom of the page.
type glyph struct {
	font    string
	size    float64
	x, y, w float64
	s       string
}

type pageBox struct {
	x0, y0, x1, y1 float64
}

func (b pageBox) width() float64  { return b.x1 - b.x0 }
func (b pageBox) height() float64 { return b.y1 - b.y0 }

// pdfValue is the object accessor shared by rsc.io/pdf and ledongthuc/pdf.
type pdfValue[V any] interface {
	Key(key string) V
	Index(i int) V
	Len() int
	Float64() float64
	IsNull() bool
}

// mediaBox reads the page MediaBox, following the Parent chain for
// inherited boxes.
func mediaBox[V pdfValue[V]](page V) pageBox {
	v := page
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			b := pageBox{
				x0: box.Index(0).Float64(),
				y0: box.Index(1).Float64(),
				x1: box.Index(2).Float64(),
				y1: box.Index(3).Float64(),
			}
			if b.width() > 0 && b.height() > 0 {
				return b
			}
		}
		v = v.Key("Parent")
	}
	return pageBox{x1: defaultPageWidth, y1: defaultPageHeight}
}

// layoutPage groups the glyphs of one page into runs: glyphs on the same
// baseline with the same font, close enough to read as one phrase.
func layoutPage(glyphs []glyph, page int, box pageBox) []outline.TextElement {
	gs := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.s == "" || g.size <= 0 {
			continue
		}
		gs = append(gs, g)
	}
	if len(gs) == 0 {
		return nil
	}
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].y > gs[j].y })

	var out []outline.TextElement
	for start := 0; start < len(gs); {
		end := start + 1
		tol := rowToleranceRatio * gs[start].size
		for end < len(gs) && math.Abs(gs[end].y-gs[start].y) <= tol {
			end++
		}
		row := gs[start:end]
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		out = append(out, splitRow(row, page, box)...)
		start = end
	}
	return out
}

type run struct {
	text           strings.Builder
	fontName       string
	size           float64
	left, right, y float64
}

func splitRow(row []glyph, page int, box pageBox) []outline.TextElement {
	var out []outline.TextElement
	var cur *run
	flush := func() {
		if cur == nil {
			return
		}
		text := strings.TrimSpace(cur.text.String())
		if text != "" {
			name := baseFontName(cur.fontName)
			bold, italic := fontStyle(name)
			top := box.y1 - cur.y - cur.size
			out = append(out, outline.TextElement{
				Text:     text,
				FontName: name,
				FontSize: cur.size,
				Bold:     bold,
				Italic:   italic,
				Page:     page,
				BBox: outline.BBox{
					Left:   cur.left - box.x0,
					Top:    top,
					Right:  cur.right - box.x0,
					Bottom: top + cur.size,
				},
			})
		}
		cur = nil
	}

	for _, g := range row {
		if cur != nil && g.font == cur.fontName && g.size == cur.size {
			gap := g.x - cur.right
			if gap <= splitGapRatio*g.size {
				if gap > spaceGapRatio*g.size && !strings.HasSuffix(cur.text.String(), " ") && !strings.HasPrefix(g.s, " ") {
					cur.text.WriteByte(' ')
				}
				cur.text.WriteString(g.s)
				cur.right = math.Max(cur.right, g.x+g.w)
				continue
			}
		}
		flush()
		cur = &run{fontName: g.font, size: g.size, left: g.x, right: g.x + g.w, y: g.y}
		cur.text.WriteString(g.s)
	}
	flush()
	return out
}

// baseFontName drops the subset tag of embedded fonts ("ABCDEF+Arial-Bold").
func baseFontName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

// fontStyle infers weight and slant from the font name.
func fontStyle(name string) (bold, italic bool) {
	n := strings.ToLower(name)
	for _, k := range []string{"bold", "black", "heavy", "semibold", "demibold"} {
		if strings.Contains(n, k) {
			bold = true
			break
		}
	}
	italic = strings.Contains(n, "italic") || strings.Contains(n, "oblique")
	return bold, italic
}
