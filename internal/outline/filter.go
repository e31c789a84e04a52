package outline

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// CompileExclusions compiles the configured exclusion patterns.
func CompileExclusions(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// Filter marks eligible candidates that are noise rather than outline
// entries. cands must be the full detector output so that table and page
// context can be derived; only eligible candidates are judged. The input
// slice is not modified.
func Filter(cands []Candidate, pageWidths map[int]float64, exclusions []*regexp.Regexp, cfg Config) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)

	pages := groupByPage(out)
	running := runningHeaders(out, pages, cfg)
	tocLines := make(map[int]int)
	for p, idx := range pages {
		for _, i := range idx {
			if isToCLine(out[i].Text) {
				tocLines[p]++
			}
		}
	}

	for i := range out {
		c := &out[i]
		if !c.Eligible {
			continue
		}
		c.Reason = classifyNoise(out, i, pages, pageWidths, running, tocLines, exclusions, cfg)
		c.Excluded = c.Reason != ReasonNone
	}

	if cfg.Dedupe {
		markDuplicates(out)
	}
	return out
}

func classifyNoise(cands []Candidate, i int, pages map[int][]int, pageWidths map[int]float64,
	running map[string]bool, tocLines map[int]int, exclusions []*regexp.Regexp, cfg Config) Reason {
	c := cands[i]
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return ReasonEmpty
	}
	letters, digits := countClasses(text)
	if letters == 0 && digits == 0 {
		return ReasonPunctuation
	}
	if letters == 0 {
		return ReasonNumeric
	}
	for _, re := range exclusions {
		if re.MatchString(text) {
			return ReasonFormField
		}
	}
	if isToCLine(text) && (hasDotLeaders(text) || tocLines[c.Page] >= cfg.GridMinRows) {
		return ReasonToCEntry
	}
	if inGrid(cands, i, pages[c.Page], pageWidth(cands, pages[c.Page], pageWidths, c.Page), cfg) {
		return ReasonGrid
	}
	if running[headerKey(text)] && isPageEdge(i, pages[c.Page]) {
		return ReasonRunningHeader
	}
	return ReasonNone
}

func countClasses(s string) (letters, digits int) {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters, digits
}

func groupByPage(cands []Candidate) map[int][]int {
	pages := make(map[int][]int)
	for i, c := range cands {
		pages[c.Page] = append(pages[c.Page], i)
	}
	for _, idx := range pages {
		sort.SliceStable(idx, func(a, b int) bool {
			return readingLess(cands[idx[a]].TextElement, cands[idx[b]].TextElement)
		})
	}
	return pages
}

func readingLess(a, b TextElement) bool {
	if a.Page != b.Page {
		return a.Page < b.Page
	}
	if a.BBox.Top != b.BBox.Top {
		return a.BBox.Top < b.BBox.Top
	}
	return a.BBox.Left < b.BBox.Left
}

// pageWidth prefers the width supplied by the source and falls back to the
// horizontal extent of the page content.
func pageWidth(cands []Candidate, idx []int, pageWidths map[int]float64, page int) float64 {
	if w := pageWidths[page]; w > 0 {
		return w
	}
	if len(idx) == 0 {
		return 0
	}
	minL, maxR := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		b := cands[i].BBox
		minL = math.Min(minL, b.Left)
		maxR = math.Max(maxR, b.Right)
	}
	return maxR - minL
}

// inGrid reports whether candidate i is a narrow cell inside a stack of at
// least GridMinRows narrow rows sharing its left margin and row height, each
// row following the previous one without a paragraph-sized gap. Wide rows
// (running paragraph lines) break the stack.
func inGrid(cands []Candidate, i int, page []int, width float64, cfg Config) bool {
	c := cands[i]
	h := c.BBox.Height()
	narrow := cfg.GridNarrowRatio * width
	if h <= 0 || width <= 0 || c.BBox.Width() >= narrow {
		return false
	}
	var column []TextElement
	pos := -1
	for _, j := range page {
		o := cands[j]
		if math.Abs(o.BBox.Left-c.BBox.Left) > cfg.GridTolerance ||
			math.Abs(o.BBox.Height()-h) > cfg.GridTolerance ||
			o.BBox.Width() >= narrow {
			continue
		}
		if j == i {
			pos = len(column)
		}
		column = append(column, o.TextElement)
	}
	if pos < 0 || len(column) < cfg.GridMinRows {
		return false
	}

	maxGap := cfg.GridMaxGapRatio * h
	linked := func(a, b TextElement) bool {
		return b.BBox.Top-a.BBox.Bottom <= maxGap
	}
	start, end := pos, pos
	for start > 0 && linked(column[start-1], column[start]) {
		start--
	}
	for end < len(column)-1 && linked(column[end], column[end+1]) {
		end++
	}
	return end-start+1 >= cfg.GridMinRows
}

// headerKey normalizes text for running header comparison: page numbers
// and case are ignored.
func headerKey(text string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, text)
	return foldText(s)
}

// runningHeaders finds texts that open or close at least
// RunningHeaderMinPages distinct pages.
func runningHeaders(cands []Candidate, pages map[int][]int, cfg Config) map[string]bool {
	seen := make(map[string]map[int]bool)
	for p, idx := range pages {
		if len(idx) < 2 {
			continue
		}
		for _, i := range []int{idx[0], idx[len(idx)-1]} {
			k := headerKey(cands[i].Text)
			if k == "" {
				continue
			}
			if seen[k] == nil {
				seen[k] = make(map[int]bool)
			}
			seen[k][p] = true
		}
	}
	out := make(map[string]bool)
	for k, ps := range seen {
		if len(ps) >= cfg.RunningHeaderMinPages {
			out[k] = true
		}
	}
	return out
}

func isPageEdge(i int, page []int) bool {
	if len(page) < 2 {
		return false
	}
	return page[0] == i || page[len(page)-1] == i
}

// markDuplicates excludes repeated (text, page) pairs, keeping the first in
// reading order.
func markDuplicates(cands []Candidate) {
	order := make([]int, 0, len(cands))
	for i, c := range cands {
		if c.Eligible && !c.Excluded {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return readingLess(cands[order[a]].TextElement, cands[order[b]].TextElement)
	})
	type key struct {
		text string
		page int
	}
	seen := make(map[key]bool, len(order))
	for _, i := range order {
		k := key{foldText(cands[i].Text), cands[i].Page}
		if seen[k] {
			cands[i].Excluded = true
			cands[i].Reason = ReasonDuplicate
			continue
		}
		seen[k] = true
	}
}
