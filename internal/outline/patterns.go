package outline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Match is the outcome of a pattern table lookup.
type Match struct {
	Category  Category
	Number    string // numbering token, e.g. "1.2", "IV", "A"
	DepthHint int
}

// Pattern is one row of the ordered pattern table. Lower Priority wins.
type Pattern struct {
	Category Category
	Priority int
	Match    func(line string) (Match, bool)
}

// Heading patterns: numeric, roman numerals, alphabetic markers and
// explicit chapter/section/appendix prefixes.
var (
	numberedRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*)\.?\s+\S*\p{L}`)
	romanRe    = regexp.MustCompile(`^([IVXLCDM]+)\.\s+\S*\p{L}`)
	alphaRe    = regexp.MustCompile(`^([A-Z])\.\s+\S*\p{L}`)
	chapterRe  = regexp.MustCompile(`(?i)^(?:chapter|section|part|appendix)\s+(\d+(?:\.\d+)*|[IVXLCDM]+|[A-Z])\b`)
)

// ToC entry patterns: numbering, title, trailing page number.
var (
	tocNumRe      = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\.?\s+(.+?)\s+(\d+)\s*$`)
	tocRomanRe    = regexp.MustCompile(`^\s*([IVXLCDM]+)(?:\.([0-9]+))?\.?\s+(.+?)\s+(\d+)\s*$`)
	tocAppendixRe = regexp.MustCompile(`^\s*(?:Appendix|APPENDIX)\s+([A-Z](?:\.[0-9]+)*)\s+(.+?)\s+(\d+)\s*$`)
	dotLeaderRe   = regexp.MustCompile(`(?:\s*\.){3,}\s*|(?:\s*[·•…]){2,}\s*`)
)

// DefaultPatterns builds the pattern table in priority order: numbered,
// roman, alphabetic, chapter keyword, bare keyword.
func DefaultPatterns(keywords []string) []Pattern {
	return []Pattern{
		{Category: CategoryNumbered, Priority: 0, Match: matchNumbered},
		{Category: CategoryRoman, Priority: 1, Match: regexMatcher(CategoryRoman, romanRe)},
		{Category: CategoryAlpha, Priority: 2, Match: regexMatcher(CategoryAlpha, alphaRe)},
		{Category: CategoryChapter, Priority: 3, Match: regexMatcher(CategoryChapter, chapterRe)},
		{Category: CategoryKeyword, Priority: 4, Match: keywordMatcher(keywords)},
	}
}

// MatchLine returns the match of the lowest-Priority pattern that matches
// line. Patterns of equal priority are tried in table order.
func MatchLine(table []Pattern, line string) Match {
	best, found := Match{Category: CategoryNone}, false
	bestPriority := 0
	for _, p := range table {
		if found && p.Priority >= bestPriority {
			continue
		}
		if m, ok := p.Match(line); ok {
			best, bestPriority, found = m, p.Priority, true
		}
	}
	return best
}

func matchNumbered(line string) (Match, bool) {
	m := numberedRe.FindStringSubmatch(line)
	if m == nil {
		return Match{}, false
	}
	return Match{Category: CategoryNumbered, Number: m[1], DepthHint: strings.Count(m[1], ".")}, true
}

func regexMatcher(c Category, re *regexp.Regexp) func(string) (Match, bool) {
	return func(line string) (Match, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return Match{}, false
		}
		return Match{Category: c, Number: m[1]}, true
	}
}

// keywordMatcher matches a whole line equal to a section name, ignoring
// case and a trailing colon or period.
func keywordMatcher(keywords []string) func(string) (Match, bool) {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[foldText(k)] = true
	}
	return func(line string) (Match, bool) {
		s := strings.TrimRight(strings.TrimSpace(line), ":.")
		if set[foldText(s)] {
			return Match{Category: CategoryKeyword}, true
		}
		return Match{}, false
	}
}

// foldText case-folds s and collapses whitespace. A Caser is not safe for
// concurrent use, so one is made per call.
func foldText(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

func normalizeDotLeaders(s string) string {
	s = dotLeaderRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func hasDotLeaders(s string) bool {
	return dotLeaderRe.MatchString(s)
}

// isToCLine reports whether s looks like a table-of-contents entry.
func isToCLine(s string) bool {
	s = normalizeDotLeaders(s)
	return tocAppendixRe.MatchString(s) || tocNumRe.MatchString(s) || tocRomanRe.MatchString(s)
}
