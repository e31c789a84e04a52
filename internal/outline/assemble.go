package outline

import "sort"

// Assemble orders the leveled headings by page and vertical position and
// packages them with the title.
func Assemble(title string, leveled []Leveled) Result {
	sorted := make([]Leveled, len(leveled))
	copy(sorted, leveled)
	sort.SliceStable(sorted, func(i, j int) bool {
		return readingLess(sorted[i].TextElement, sorted[j].TextElement)
	})

	res := Result{Title: title, Outline: make([]Heading, 0, len(sorted))}
	for _, l := range sorted {
		res.Outline = append(res.Outline, Heading{
			Level: l.Level,
			Text:  l.Text,
			Page:  l.Page,
			Top:   l.BBox.Top,
			Left:  l.BBox.Left,
		})
	}
	return res
}
