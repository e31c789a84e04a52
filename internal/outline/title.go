package outline

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ResolveTitle picks the document title from page one: the largest text on
// the page, joined with the following runs of the same size that sit
// directly below it. Runs without letters (page numbers, rules) are
// ignored. An empty first page gives an empty title.
func ResolveTitle(elems []TextElement, cfg Config) string {
	var first []TextElement
	for _, e := range elems {
		if e.Page != 1 || e.FontSize <= 0 {
			continue
		}
		if letters, _ := countClasses(e.Text); letters == 0 {
			continue
		}
		first = append(first, e)
	}
	if len(first) == 0 {
		return ""
	}
	sort.SliceStable(first, func(i, j int) bool { return readingLess(first[i], first[j]) })

	// the title starts at the largest run that fits in MaxTitleLength;
	// longer runs (pull-quotes, banners) only count when nothing else fits
	maxSize := 0.0
	for _, e := range first {
		if e.FontSize > maxSize && utf8.RuneCountInString(e.Text) <= cfg.MaxTitleLength {
			maxSize = e.FontSize
		}
	}
	if maxSize == 0 {
		for _, e := range first {
			maxSize = max(maxSize, e.FontSize)
		}
	}

	start := -1
	for i, e := range first {
		if e.FontSize == maxSize {
			start = i
			break
		}
	}
	if utf8.RuneCountInString(first[start].Text) > cfg.MaxTitleLength {
		return truncateWords(first[start].Text, cfg.MaxTitleLength)
	}

	parts := []string{first[start].Text}
	length := utf8.RuneCountInString(first[start].Text)
	prev := first[start]
	for _, e := range first[start+1:] {
		if e.FontSize != maxSize {
			// a smaller run on the same line does not break the title
			if e.BBox.Top < prev.BBox.Bottom {
				continue
			}
			break
		}
		if e.BBox.Top-prev.BBox.Bottom > cfg.TitleGapRatio*maxSize {
			break
		}
		n := utf8.RuneCountInString(e.Text)
		if length+1+n > cfg.MaxTitleLength {
			break
		}
		parts = append(parts, e.Text)
		length += 1 + n
		prev = e
	}
	return strings.Join(parts, " ")
}

// truncateWords cuts s to at most n runes, backing off to the last word
// boundary when there is one.
func truncateWords(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if unicode.IsSpace(r[n]) {
		return strings.TrimSpace(cut)
	}
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		return strings.TrimSpace(cut[:i])
	}
	return cut
}
