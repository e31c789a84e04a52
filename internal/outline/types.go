package outline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BBox is a bounding box in page space. Top grows downward.
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (b BBox) Width() float64  { return b.Right - b.Left }
func (b BBox) Height() float64 { return b.Bottom - b.Top }

// TextElement is one text run as produced by a source. It is never mutated
// by the pipeline; sanitizing produces copies.
type TextElement struct {
	Text     string  `json:"text"`
	FontName string  `json:"font_family"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold"`
	Italic   bool    `json:"italic"`
	Page     int     `json:"page_number"`
	BBox     BBox    `json:"bbox"`
}

// Y is the vertical reading position of the element.
func (e TextElement) Y() float64 { return e.BBox.Top }

// Document is the full element stream of one document.
type Document struct {
	Elements []TextElement
	// PageWidths is optional; pages missing from it fall back to the
	// horizontal extent of their content.
	PageWidths map[int]float64
}

// FontProfile is the document-wide font statistics.
type FontProfile struct {
	BodySize     float64
	HeadingSizes []float64 // descending
	CharCounts   map[float64]int
}

// IsHeadingSize reports whether size belongs to the heading-size set.
func (p FontProfile) IsHeadingSize(size float64) bool {
	for _, s := range p.HeadingSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Category is the structural text pattern a line matched.
type Category int

const (
	CategoryNone Category = iota
	CategoryNumbered
	CategoryRoman
	CategoryAlpha
	CategoryChapter
	CategoryKeyword
)

func (c Category) String() string {
	switch c {
	case CategoryNumbered:
		return "numbered"
	case CategoryRoman:
		return "roman"
	case CategoryAlpha:
		return "alpha"
	case CategoryChapter:
		return "chapter"
	case CategoryKeyword:
		return "keyword"
	default:
		return "none"
	}
}

// Path records which eligibility rule admitted a candidate.
type Path int

const (
	PathNone Path = iota
	PathSize
	PathEmphasis
	PathLexical
)

// Reason is why the noise filter excluded a candidate.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonEmpty         Reason = "empty"
	ReasonPunctuation   Reason = "punctuation"
	ReasonNumeric       Reason = "numeric"
	ReasonGrid          Reason = "grid"
	ReasonFormField     Reason = "form_field"
	ReasonToCEntry      Reason = "toc_entry"
	ReasonRunningHeader Reason = "running_header"
	ReasonDuplicate     Reason = "duplicate"
)

// Candidate is a TextElement with the signals derived by the detector and
// the verdict of the noise filter.
type Candidate struct {
	TextElement
	Index      int // position in the sanitized element stream
	SizeRatio  float64
	Emphasized bool
	Category   Category
	DepthHint  int
	Eligible   bool
	Path       Path
	Excluded   bool
	Reason     Reason
}

// Level is an outline level, H1 being the most prominent.
type Level int

func (l Level) String() string { return "H" + strconv.Itoa(int(l)) }

func (l Level) MarshalText() ([]byte, error) {
	if l < 1 {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) < 2 || (s[0] != 'H' && s[0] != 'h') {
		return fmt.Errorf("invalid level %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid level %q", s)
	}
	*l = Level(n)
	return nil
}

// Heading is one outline entry.
type Heading struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`

	Top  float64 `json:"-"`
	Left float64 `json:"-"`
}

// Result is the outline of a single document.
type Result struct {
	Title   string    `json:"title"`
	Outline []Heading `json:"outline"`
}

// MarshalJSON keeps an empty outline as [] rather than null.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	a := alias(r)
	if a.Outline == nil {
		a.Outline = []Heading{}
	}
	return json.Marshal(a)
}

// Empty is the result for documents that yielded no elements.
func Empty() Result {
	return Result{Title: "", Outline: []Heading{}}
}

// Diagnostics carries per-stage counts so callers can log pipeline outcomes.
type Diagnostics struct {
	Elements     int            `json:"elements"`
	Repaired     int            `json:"repaired"`
	BodySize     float64        `json:"body_size"`
	HeadingSizes []float64      `json:"heading_sizes"`
	PatternOnly  bool           `json:"pattern_only"`
	Candidates   int            `json:"candidates"`
	Excluded     map[Reason]int `json:"excluded"`
	Leveled      int            `json:"leveled"`
	Dropped      int            `json:"dropped"`
}

// ExcludedTotal sums all exclusion reasons.
func (d Diagnostics) ExcludedTotal() int {
	n := 0
	for _, v := range d.Excluded {
		n += v
	}
	return n
}
