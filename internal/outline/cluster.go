package outline

import "sort"

// Leveled is a surviving candidate with its assigned outline level.
type Leveled struct {
	Candidate
	Level Level
}

// Cluster assigns levels to the candidates that are eligible and were not
// excluded. Distinct sizes rank from H1 downward; inside one size, numbered
// entries deeper than the shallowest numbering of that size drop one level.
// Without heading sizes the level comes from the pattern alone. Candidates
// that get no level are counted in dropped.
func Cluster(cands []Candidate, profile FontProfile, cfg Config) (leveled []Leveled, dropped int) {
	var survivors []Candidate
	for _, c := range cands {
		if c.Eligible && !c.Excluded {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		return nil, 0
	}

	if len(profile.HeadingSizes) == 0 {
		leveled, dropped = clusterByPattern(survivors)
	} else {
		leveled = clusterBySize(survivors)
	}
	for i := range leveled {
		if leveled[i].Level > Level(cfg.MaxLevel) {
			leveled[i].Level = Level(cfg.MaxLevel)
		}
	}
	anchor(leveled)
	return leveled, dropped
}

func clusterBySize(survivors []Candidate) []Leveled {
	var sizes []float64
	seen := make(map[float64]bool)
	minDepth := make(map[float64]int)
	for _, c := range survivors {
		if !seen[c.FontSize] {
			seen[c.FontSize] = true
			sizes = append(sizes, c.FontSize)
		}
		if c.Category == CategoryNumbered {
			if d, ok := minDepth[c.FontSize]; !ok || c.DepthHint < d {
				minDepth[c.FontSize] = c.DepthHint
			}
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	rank := make(map[float64]int, len(sizes))
	for i, s := range sizes {
		rank[s] = i
	}

	out := make([]Leveled, 0, len(survivors))
	for _, c := range survivors {
		lvl := Level(rank[c.FontSize] + 1)
		if c.Category == CategoryNumbered && c.DepthHint > minDepth[c.FontSize] {
			lvl++
		}
		out = append(out, Leveled{Candidate: c, Level: lvl})
	}
	return out
}

func clusterByPattern(survivors []Candidate) ([]Leveled, int) {
	var out []Leveled
	dropped := 0
	for _, c := range survivors {
		var lvl Level
		switch c.Category {
		case CategoryKeyword, CategoryChapter:
			lvl = 1
		case CategoryNumbered:
			if c.DepthHint <= 2 {
				lvl = Level(c.DepthHint + 1)
			}
		}
		if lvl == 0 {
			dropped++
			continue
		}
		out = append(out, Leveled{Candidate: c, Level: lvl})
	}
	return out, dropped
}

// anchor shifts levels so that the most prominent level present is H1.
func anchor(leveled []Leveled) {
	if len(leveled) == 0 {
		return
	}
	top := leveled[0].Level
	for _, l := range leveled[1:] {
		if l.Level < top {
			top = l.Level
		}
	}
	if top <= 1 {
		return
	}
	for i := range leveled {
		leveled[i].Level -= top - 1
	}
}
