package outline

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidConfig is returned by Config.Validate and New.
var ErrInvalidConfig = errors.New("invalid outline config")

// Config holds every tunable threshold of the pipeline. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// Font profiling
	SizePrecision   float64 `mapstructure:"size_precision" yaml:"size_precision"`       // sizes are rounded to this step
	MinHeadingRatio float64 `mapstructure:"min_heading_ratio" yaml:"min_heading_ratio"` // heading size >= body * ratio

	// Candidate detection
	MinHeadingLength  int      `mapstructure:"min_heading_length" yaml:"min_heading_length"`
	MaxHeadingLength  int      `mapstructure:"max_heading_length" yaml:"max_heading_length"`
	MaxEmphasisLength int      `mapstructure:"max_emphasis_length" yaml:"max_emphasis_length"`
	AllCapsEmphasis   bool     `mapstructure:"all_caps_emphasis" yaml:"all_caps_emphasis"`
	Keywords          []string `mapstructure:"keywords" yaml:"keywords"`

	// Noise filter
	GridNarrowRatio       float64  `mapstructure:"grid_narrow_ratio" yaml:"grid_narrow_ratio"`
	GridMinRows           int      `mapstructure:"grid_min_rows" yaml:"grid_min_rows"`
	GridTolerance         float64  `mapstructure:"grid_tolerance" yaml:"grid_tolerance"`
	GridMaxGapRatio       float64  `mapstructure:"grid_max_gap_ratio" yaml:"grid_max_gap_ratio"`
	RunningHeaderMinPages int      `mapstructure:"running_header_min_pages" yaml:"running_header_min_pages"`
	ExclusionPatterns     []string `mapstructure:"exclusion_patterns" yaml:"exclusion_patterns"`
	Dedupe                bool     `mapstructure:"dedupe" yaml:"dedupe"`

	// Level clustering
	MaxLevel int `mapstructure:"max_level" yaml:"max_level"`

	// Title
	TitleGapRatio  float64 `mapstructure:"title_gap_ratio" yaml:"title_gap_ratio"`
	MaxTitleLength int     `mapstructure:"max_title_length" yaml:"max_title_length"`
}

// DefaultKeywords are the bare section names accepted as headings even
// without size or weight cues.
var DefaultKeywords = []string{
	"abstract",
	"acknowledgements",
	"acknowledgments",
	"appendix",
	"background",
	"bibliography",
	"conclusion",
	"conclusions",
	"contents",
	"discussion",
	"foreword",
	"glossary",
	"introduction",
	"methodology",
	"methods",
	"overview",
	"preface",
	"references",
	"results",
	"revision history",
	"summary",
	"table of contents",
}

// DefaultExclusionPatterns match form fields, table headers and revision
// history rows. Each starts on a word so numbered headings never match.
var DefaultExclusionPatterns = []string{
	`(?i)^(date|signature|signed|name|place|designation|version|remarks)\s*(:|_{2,}|\.{3,}|$)`,
	`(?i)^signature\s+of\b`,
	`(?i)^(s\.?\s?no\.?|sl\.?\s?no\.?)\s+name\b`,
	`(?i)^version\s+date\s+(remarks|author|description|changes)\b`,
	`(?i)^(identifier|syllabus)\s+(reference|days)$`,
	`^\d+\.\d+\s+\d{1,2}\s+[A-Z]{3,}\s+\d{4}\b`,
	`(?i)^(revision\s+history|table\s+of\s+contents)\s+\d+$`,
	`(?i)^page\s+\d+(\s+of\s+\d+)?$`,
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		SizePrecision:   0.1,
		MinHeadingRatio: 1.05,

		MinHeadingLength:  3,
		MaxHeadingLength:  150,
		MaxEmphasisLength: 80,
		AllCapsEmphasis:   true,
		Keywords:          append([]string(nil), DefaultKeywords...),

		GridNarrowRatio:       0.5,
		GridMinRows:           3,
		GridTolerance:         2.0,
		GridMaxGapRatio:       1.0,
		RunningHeaderMinPages: 3,
		ExclusionPatterns:     append([]string(nil), DefaultExclusionPatterns...),
		Dedupe:                true,

		MaxLevel: 6,

		TitleGapRatio:  1.0,
		MaxTitleLength: 200,
	}
}

// Validate checks ranges and compiles the exclusion patterns.
func (c Config) Validate() error {
	switch {
	case c.SizePrecision <= 0:
		return fmt.Errorf("%w: size_precision must be > 0", ErrInvalidConfig)
	case c.MinHeadingRatio < 1:
		return fmt.Errorf("%w: min_heading_ratio must be >= 1", ErrInvalidConfig)
	case c.MinHeadingLength < 1:
		return fmt.Errorf("%w: min_heading_length must be >= 1", ErrInvalidConfig)
	case c.MaxHeadingLength < c.MinHeadingLength:
		return fmt.Errorf("%w: max_heading_length below min_heading_length", ErrInvalidConfig)
	case c.MaxEmphasisLength < c.MinHeadingLength:
		return fmt.Errorf("%w: max_emphasis_length below min_heading_length", ErrInvalidConfig)
	case c.GridNarrowRatio <= 0 || c.GridNarrowRatio > 1:
		return fmt.Errorf("%w: grid_narrow_ratio must be in (0,1]", ErrInvalidConfig)
	case c.GridMinRows < 2:
		return fmt.Errorf("%w: grid_min_rows must be >= 2", ErrInvalidConfig)
	case c.GridTolerance < 0 || c.GridMaxGapRatio < 0:
		return fmt.Errorf("%w: grid tolerances must be >= 0", ErrInvalidConfig)
	case c.RunningHeaderMinPages < 2:
		return fmt.Errorf("%w: running_header_min_pages must be >= 2", ErrInvalidConfig)
	case c.MaxLevel < 1:
		return fmt.Errorf("%w: max_level must be >= 1", ErrInvalidConfig)
	case c.TitleGapRatio < 0:
		return fmt.Errorf("%w: title_gap_ratio must be >= 0", ErrInvalidConfig)
	case c.MaxTitleLength < 1:
		return fmt.Errorf("%w: max_title_length must be >= 1", ErrInvalidConfig)
	}
	for _, p := range c.ExclusionPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: exclusion pattern %q: %v", ErrInvalidConfig, p, err)
		}
	}
	return nil
}
