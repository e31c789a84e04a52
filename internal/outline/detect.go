package outline

import (
	"unicode"
	"unicode/utf8"
)

// Detect annotates every element with heading signals and decides its
// structural eligibility. An element is eligible when any of these holds:
//
//   - its size is a heading size and the text is short enough;
//   - it is emphasized and matches a structural pattern;
//   - it matches a chapter keyword or is a bare section name.
func Detect(elems []TextElement, profile FontProfile, patterns []Pattern, cfg Config) []Candidate {
	out := make([]Candidate, len(elems))
	for i, e := range elems {
		c := Candidate{TextElement: e, Index: i}
		if profile.BodySize > 0 {
			c.SizeRatio = e.FontSize / profile.BodySize
		}
		c.Emphasized = e.Bold || (cfg.AllCapsEmphasis && isAllCaps(e.Text))

		m := MatchLine(patterns, e.Text)
		c.Category = m.Category
		c.DepthHint = m.DepthHint

		n := utf8.RuneCountInString(e.Text)
		switch {
		case n < cfg.MinHeadingLength:
		case profile.IsHeadingSize(e.FontSize) && n <= cfg.MaxHeadingLength:
			c.Path = PathSize
		case c.Emphasized && c.Category != CategoryNone && n <= cfg.MaxEmphasisLength:
			c.Path = PathEmphasis
		case (c.Category == CategoryChapter || c.Category == CategoryKeyword) && n <= cfg.MaxEmphasisLength:
			c.Path = PathLexical
		}
		c.Eligible = c.Path != PathNone
		out[i] = c
	}
	return out
}

// isAllCaps reports whether text has at least three letters and none of
// them is lower case.
func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters >= 3
}
