package outline

import (
	"sort"
	"unicode/utf8"
)

// fallbackBodySize stands in when no element carries a usable size.
const fallbackBodySize = 12.0

// BuildProfile computes the document font profile. Body size is the size
// carrying the most characters (ties go to the smaller size); heading sizes
// are the larger sizes used by at least one non-empty run, descending.
// Elements with a size <= 0 are ignored.
func BuildProfile(elems []TextElement, cfg Config) FontProfile {
	counts := make(map[float64]int)
	for _, e := range elems {
		if e.FontSize <= 0 {
			continue
		}
		counts[e.FontSize] += utf8.RuneCountInString(e.Text)
	}
	p := FontProfile{CharCounts: counts}
	if len(counts) == 0 {
		return p
	}

	sizes := make([]float64, 0, len(counts))
	for s := range counts {
		sizes = append(sizes, s)
	}
	sort.Float64s(sizes)

	best := sizes[0]
	for _, s := range sizes[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	p.BodySize = best

	for i := len(sizes) - 1; i >= 0; i-- {
		s := sizes[i]
		if s <= best || s < best*cfg.MinHeadingRatio || counts[s] == 0 {
			continue
		}
		p.HeadingSizes = append(p.HeadingSizes, s)
	}
	return p
}
