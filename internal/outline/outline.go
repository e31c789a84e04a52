// Package outline infers a document outline (title plus leveled headings)
// from positioned text runs, using font statistics, layout and text
// patterns rather than embedded bookmarks.
//
// The pipeline is a chain of pure stages:
//
//	BuildProfile -> Detect -> Filter -> Cluster -> Assemble
//
// with ResolveTitle reading the same element stream on the side. Each stage
// can be called on its own; Classifier wires them together.
package outline

import (
	"fmt"
	"regexp"
)

// Classifier runs the full pipeline with a fixed configuration. It holds no
// per-document state and is safe for concurrent use.
type Classifier struct {
	cfg        Config
	patterns   []Pattern
	exclusions []*regexp.Regexp
}

// New validates cfg and prepares the pattern tables.
func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ex, err := CompileExclusions(cfg.ExclusionPatterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Classifier{
		cfg:        cfg,
		patterns:   DefaultPatterns(cfg.Keywords),
		exclusions: ex,
	}, nil
}

// WithPatterns returns a copy of the classifier using the given pattern
// table instead of the default one.
func (c *Classifier) WithPatterns(table []Pattern) *Classifier {
	cp := *c
	cp.patterns = append([]Pattern(nil), table...)
	return &cp
}

// Config returns the configuration the classifier was built with.
func (c *Classifier) Config() Config { return c.cfg }

// Extract returns the outline of doc.
func (c *Classifier) Extract(doc Document) Result {
	res, _ := c.ExtractWithDiagnostics(doc)
	return res
}

// ExtractWithDiagnostics returns the outline of doc together with the
// per-stage counts.
func (c *Classifier) ExtractWithDiagnostics(doc Document) (Result, Diagnostics) {
	diag := Diagnostics{Excluded: map[Reason]int{}}

	s := sanitize(doc, c.cfg)
	diag.Elements = len(s.elems)
	diag.Repaired = s.repaired
	if len(s.elems) == 0 {
		return Empty(), diag
	}

	profile := BuildProfile(s.elems, c.cfg)
	if profile.BodySize == 0 {
		profile.BodySize = fallbackBodySize
	}
	s.patchSizes(profile.BodySize)
	diag.BodySize = profile.BodySize
	diag.HeadingSizes = profile.HeadingSizes
	diag.PatternOnly = len(profile.HeadingSizes) == 0

	title := ResolveTitle(s.elems, c.cfg)

	cands := Detect(s.elems, profile, c.patterns, c.cfg)
	cands = Filter(cands, s.pageWidths, c.exclusions, c.cfg)
	for _, cd := range cands {
		if !cd.Eligible {
			continue
		}
		diag.Candidates++
		if cd.Excluded {
			diag.Excluded[cd.Reason]++
		}
	}

	leveled, dropped := Cluster(cands, profile, c.cfg)
	diag.Leveled = len(leveled)
	diag.Dropped = dropped

	return Assemble(title, leveled), diag
}
