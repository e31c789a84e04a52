package outline

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestExtract_EmptyDocument(t *testing.T) {
	c := newClassifier(t)
	for _, d := range []Document{{}, {Elements: []TextElement{el("   ", 12, 1, 10)}}} {
		res := c.Extract(d)
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(b) != `{"title":"","outline":[]}` {
			t.Errorf("expected empty result, got %s", b)
		}
	}
}

func TestExtract_ScenarioA_SingleNumberedHeading(t *testing.T) {
	d := doc(
		one(el("1. Introduction", 18, 1, 72)),
		body(1, 110, 12),
	)
	res := newClassifier(t).Extract(d)

	want := []Heading{{Level: 1, Text: "1. Introduction", Page: 1}}
	if len(res.Outline) != 1 {
		t.Fatalf("expected 1 heading, got %v", texts(res.Outline))
	}
	got := res.Outline[0]
	if got.Level != want[0].Level || got.Text != want[0].Text || got.Page != want[0].Page {
		t.Errorf("expected %+v, got %+v", want[0], got)
	}
	if res.Title != "1. Introduction" {
		t.Errorf("expected title %q, got %q", "1. Introduction", res.Title)
	}
}

func TestExtract_ScenarioB_FormRowsDoNotReachOutline(t *testing.T) {
	var rows []TextElement
	for i := 0; i < 5; i++ {
		rows = append(rows, el("Date: ___ Signature: ___", 12, 1, 300+float64(i)*16))
	}
	d := doc(
		one(el("1. Scope", 16, 1, 72)),
		body(1, 100, 10),
		rows,
	)
	res, diag := newClassifier(t).ExtractWithDiagnostics(d)
	if got := texts(res.Outline); !reflect.DeepEqual(got, []string{"H1 1. Scope"}) {
		t.Errorf("expected only the scope heading, got %v", got)
	}
	if diag.Excluded[ReasonFormField] != 5 {
		t.Errorf("expected 5 form field exclusions, got %v", diag.Excluded)
	}
}

func TestExtract_ScenarioB_BodySizeFormRows(t *testing.T) {
	var rows []TextElement
	for i := 0; i < 5; i++ {
		rows = append(rows, el("Date: ___ Signature: ___", 10, 1, 300+float64(i)*14))
	}
	d := doc(
		one(el("1. Scope", 16, 1, 72)),
		body(1, 100, 10),
		rows,
	)
	res := newClassifier(t).Extract(d)
	if got := texts(res.Outline); !reflect.DeepEqual(got, []string{"H1 1. Scope"}) {
		t.Errorf("expected only the scope heading, got %v", got)
	}
}

func TestExtract_ScenarioC_SizesRankRegardlessOfOrder(t *testing.T) {
	d := doc(
		one(el("Background Material", 16, 1, 72)),
		body(1, 100, 10),
		one(el("Main Findings", 20, 2, 72)),
		body(2, 110, 10),
		one(el("Further Notes", 16, 3, 72)),
		body(3, 100, 10),
	)
	res := newClassifier(t).Extract(d)
	want := []string{"H2 Background Material", "H1 Main Findings", "H2 Further Notes"}
	if got := texts(res.Outline); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtract_ScenarioD_PatternOnlyFallback(t *testing.T) {
	d := doc(
		one(el("Abstract", 10, 1, 72)),
		body(1, 100, 10),
	)
	res, diag := newClassifier(t).ExtractWithDiagnostics(d)
	if !diag.PatternOnly {
		t.Errorf("expected pattern-only mode for a uniform document")
	}
	if got := texts(res.Outline); !reflect.DeepEqual(got, []string{"H1 Abstract"}) {
		t.Errorf("expected [H1 Abstract], got %v", got)
	}
}

func TestExtract_DepthHintDemotesWithinSize(t *testing.T) {
	d := doc(
		one(el("Annual Report", 24, 1, 40)),
		one(el("1. Overview", 16, 1, 100)),
		body(1, 130, 6),
		one(el("1.1 Scope of Work", 16, 1, 250)),
		body(1, 280, 6),
		one(el("1.1.1 Exclusions", 12, 2, 72)),
		body(2, 100, 6),
	)
	res := newClassifier(t).Extract(d)
	want := []string{"H1 Annual Report", "H2 1. Overview", "H3 1.1 Scope of Work", "H3 1.1.1 Exclusions"}
	if got := texts(res.Outline); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if res.Title != "Annual Report" {
		t.Errorf("expected title %q, got %q", "Annual Report", res.Title)
	}
}

func TestExtract_BoldBodySizeHeading(t *testing.T) {
	d := doc(
		one(el("Guidelines", 20, 1, 40)),
		body(1, 80, 5),
		one(bold(el("2. Requirements", 10, 1, 170))),
		body(1, 184, 5),
	)
	res := newClassifier(t).Extract(d)
	want := []string{"H1 Guidelines", "H2 2. Requirements"}
	if got := texts(res.Outline); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtract_OutlineSortedAndAnchored(t *testing.T) {
	// Source order is scrambled on purpose.
	d := doc(
		one(el("Results", 14, 2, 300)),
		body(2, 330, 4),
		one(el("Methods", 14, 2, 72)),
		body(2, 100, 4),
		one(el("Study Design", 18, 1, 200)),
		body(1, 230, 4),
		body(1, 60, 4),
	)
	res := newClassifier(t).Extract(d)
	if len(res.Outline) == 0 {
		t.Fatal("expected headings")
	}
	hasH1 := false
	for i, h := range res.Outline {
		if h.Level == 1 {
			hasH1 = true
		}
		if i == 0 {
			continue
		}
		prev := res.Outline[i-1]
		if prev.Page > h.Page || (prev.Page == h.Page && prev.Top > h.Top) {
			t.Errorf("outline not in reading order at %d: %v", i, texts(res.Outline))
		}
	}
	if !hasH1 {
		t.Errorf("expected an H1 in %v", texts(res.Outline))
	}
}

func TestExtract_Idempotent(t *testing.T) {
	d := doc(
		one(el("Project Charter", 22, 1, 40)),
		one(el("1. Purpose", 16, 1, 100)),
		body(1, 130, 5),
		one(el("2. Stakeholders", 16, 2, 72)),
		body(2, 100, 5),
		one(el("2.1 Sponsors", 13, 2, 200)),
		body(2, 230, 5),
	)
	c := newClassifier(t)
	first, err := json.Marshal(c.Extract(d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := json.Marshal(c.Extract(d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("expected identical output:\n%s\n%s", first, second)
	}
}

func TestExtract_MalformedElementsAreRepaired(t *testing.T) {
	d := doc(
		one(el("Overview Of Results", 18, 1, 60)),
		body(1, 90, 5),
	)
	nan := el("Stray label", math.NaN(), 0, 400)
	zero := el("Another label", 0, -3, 420)
	d.Elements = append(d.Elements, nan, zero)

	res, diag := newClassifier(t).ExtractWithDiagnostics(d)
	if diag.Repaired != 2 {
		t.Errorf("expected 2 repaired elements, got %d", diag.Repaired)
	}
	if diag.BodySize != 10 {
		t.Errorf("expected body size 10, got %v", diag.BodySize)
	}
	if got := texts(res.Outline); !reflect.DeepEqual(got, []string{"H1 Overview Of Results"}) {
		t.Errorf("expected repaired elements to stay out of the outline, got %v", got)
	}
}

func TestExtract_AllSizesInvalidStillGivesTitle(t *testing.T) {
	title := el("Operating Manual", 12, 1, 40)
	title.FontSize = 0
	intro := el("Introduction", 12, 1, 80)
	intro.FontSize = -1
	d := Document{Elements: []TextElement{title, intro}}
	res := newClassifier(t).Extract(d)
	if res.Title != "Operating Manual" {
		t.Errorf("expected title %q, got %q", "Operating Manual", res.Title)
	}
	if got := texts(res.Outline); !reflect.DeepEqual(got, []string{"H1 Introduction"}) {
		t.Errorf("expected [H1 Introduction], got %v", got)
	}
}

func TestExtract_TitleEmptyWithoutPageOne(t *testing.T) {
	d := doc(
		one(el("Chapter 3 Methods", 18, 2, 72)),
		body(2, 100, 5),
	)
	res := newClassifier(t).Extract(d)
	if res.Title != "" {
		t.Errorf("expected empty title, got %q", res.Title)
	}
	if len(res.Outline) != 1 {
		t.Errorf("expected 1 heading, got %v", texts(res.Outline))
	}
}

func TestExtract_DiagnosticsCounts(t *testing.T) {
	d := doc(
		one(el("1. Scope", 16, 1, 72)),
		one(el("2024", 16, 1, 40)),
		body(1, 100, 5),
	)
	_, diag := newClassifier(t).ExtractWithDiagnostics(d)
	if diag.Candidates != 2 {
		t.Errorf("expected 2 candidates, got %d", diag.Candidates)
	}
	if diag.Excluded[ReasonNumeric] != 1 {
		t.Errorf("expected the year to be excluded as numeric, got %v", diag.Excluded)
	}
	if diag.Leveled != 1 {
		t.Errorf("expected 1 leveled heading, got %d", diag.Leveled)
	}
	if diag.Elements != 7 {
		t.Errorf("expected 7 elements, got %d", diag.Elements)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExclusionPatterns = append(cfg.ExclusionPatterns, "([")
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for bad exclusion pattern")
	}

	cfg = DefaultConfig()
	cfg.MaxLevel = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for max_level 0")
	}
}

func TestResult_JSONShape(t *testing.T) {
	res := Result{Title: "Doc", Outline: []Heading{{Level: 2, Text: "Scope", Page: 3, Top: 99}}}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"title":"Doc","outline":[{"level":"H2","text":"Scope","page":3}]}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}

	var back Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Outline[0].Level != 2 {
		t.Errorf("expected level 2, got %v", back.Outline[0].Level)
	}
}
