package outline

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// sanitized is the cleaned element stream plus the bookkeeping needed to
// patch malformed sizes once the body size is known.
type sanitized struct {
	elems      []TextElement
	badSize    []bool
	repaired   int
	pageWidths map[int]float64
}

// sanitize copies the input, normalizes text (NFKC, collapsed whitespace),
// drops runs that are empty after trimming, rounds sizes to the configured
// precision and substitutes the previous valid page number for missing ones.
// Invalid sizes are flagged and fixed later by patchSizes.
func sanitize(doc Document, cfg Config) sanitized {
	out := sanitized{
		elems:      make([]TextElement, 0, len(doc.Elements)),
		badSize:    make([]bool, 0, len(doc.Elements)),
		pageWidths: doc.PageWidths,
	}
	lastPage := 1
	for _, e := range doc.Elements {
		text := cleanText(e.Text)
		if text == "" {
			continue
		}
		e.Text = text
		repaired := false

		if e.Page < 1 {
			e.Page = lastPage
			repaired = true
		} else {
			lastPage = e.Page
		}

		bad := e.FontSize <= 0 || math.IsNaN(e.FontSize) || math.IsInf(e.FontSize, 0)
		if bad {
			e.FontSize = 0
			repaired = true
		} else {
			e.FontSize = roundTo(e.FontSize, cfg.SizePrecision)
		}
		if repaired {
			out.repaired++
		}
		out.elems = append(out.elems, e)
		out.badSize = append(out.badSize, bad)
	}
	return out
}

// patchSizes gives every element with an invalid size the body size.
func (s *sanitized) patchSizes(body float64) {
	for i, bad := range s.badSize {
		if bad {
			s.elems[i].FontSize = body
		}
	}
}

func cleanText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	r := math.Round(v/step) * step
	// keep the decimal representation stable, e.g. 10.000000001 -> 10
	return math.Round(r*1e6) / 1e6
}
