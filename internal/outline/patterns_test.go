package outline

import "testing"

func TestMatchLine(t *testing.T) {
	table := DefaultPatterns(DefaultKeywords)
	tests := []struct {
		line     string
		category Category
		number   string
		depth    int
	}{
		{"1. Introduction", CategoryNumbered, "1", 0},
		{"1 Introduction", CategoryNumbered, "1", 0},
		{"1.2 Scope", CategoryNumbered, "1.2", 1},
		{"1.2.3 Details", CategoryNumbered, "1.2.3", 2},
		{"2.1. Sponsors", CategoryNumbered, "2.1", 1},
		{"IV. Results", CategoryRoman, "IV", 0},
		{"B. Annex", CategoryAlpha, "B", 0},
		{"Chapter 3 Methods", CategoryChapter, "3", 0},
		{"APPENDIX A", CategoryChapter, "A", 0},
		{"Section 2.4", CategoryChapter, "2.4", 0},
		{"References", CategoryKeyword, "", 0},
		{"TABLE OF CONTENTS", CategoryKeyword, "", 0},
		{"Summary:", CategoryKeyword, "", 0},
		{"Summary of the findings", CategoryNone, "", 0},
		{"2024 budget", CategoryNone, "", 0},
		{"12345 records", CategoryNone, "", 0},
		{"3.14", CategoryNone, "", 0},
		{"Lorem ipsum", CategoryNone, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := MatchLine(table, tt.line)
			if m.Category != tt.category {
				t.Fatalf("expected %v, got %v", tt.category, m.Category)
			}
			if m.Number != tt.number {
				t.Errorf("expected number %q, got %q", tt.number, m.Number)
			}
			if m.DepthHint != tt.depth {
				t.Errorf("expected depth %d, got %d", tt.depth, m.DepthHint)
			}
		})
	}
}

func TestMatchLine_CustomTable(t *testing.T) {
	table := []Pattern{{
		Category: CategoryKeyword,
		Match: func(line string) (Match, bool) {
			return Match{Category: CategoryKeyword}, line == "Anhang"
		},
	}}
	if m := MatchLine(table, "Anhang"); m.Category != CategoryKeyword {
		t.Errorf("expected keyword, got %v", m.Category)
	}
	if m := MatchLine(table, "1. Einleitung"); m.Category != CategoryNone {
		t.Errorf("expected none for a table without numbering, got %v", m.Category)
	}
}

func TestMatchLine_PriorityOrder(t *testing.T) {
	table := []Pattern{
		{Category: CategoryAlpha, Priority: 2, Match: regexMatcher(CategoryAlpha, alphaRe)},
		{Category: CategoryRoman, Priority: 1, Match: regexMatcher(CategoryRoman, romanRe)},
	}
	if m := MatchLine(table, "I. Scope"); m.Category != CategoryRoman {
		t.Errorf("expected lower priority to win: expected %v, got %v", CategoryRoman, m.Category)
	}
	if m := MatchLine(table, "B. Scope"); m.Category != CategoryAlpha {
		t.Errorf("expected alpha when roman does not match, got %v", m.Category)
	}

	tied := []Pattern{
		{Category: CategoryAlpha, Priority: 1, Match: regexMatcher(CategoryAlpha, alphaRe)},
		{Category: CategoryRoman, Priority: 1, Match: regexMatcher(CategoryRoman, romanRe)},
	}
	if m := MatchLine(tied, "I. Scope"); m.Category != CategoryAlpha {
		t.Errorf("expected table order for equal priorities, got %v", m.Category)
	}
}

func TestIsToCLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1. Introduction ........ 5", true},
		{"2.3 Scope 12", true},
		{"IV Results 40", true},
		{"Appendix B Glossary 88", true},
		{"1. Introduction", false},
		{"Introduction", false},
	}
	for _, tt := range tests {
		if got := isToCLine(tt.line); got != tt.want {
			t.Errorf("isToCLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
	if !hasDotLeaders("Scope . . . . 4") {
		t.Errorf("expected spaced dot leaders to be detected")
	}
	if hasDotLeaders("e.g. one") {
		t.Errorf("expected no dot leaders")
	}
}

func TestFoldText(t *testing.T) {
	if got := foldText("  Table   OF Contents "); got != "table of contents" {
		t.Errorf("unexpected fold: %q", got)
	}
}
