package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// ErrRejected is returned when a model answer changes more than the text
// spacing of the outline.
var ErrRejected = errors.New("refinement rejected")

// Refiner post-processes an extracted outline.
type Refiner interface {
	RefineOutline(ctx context.Context, res outline.Result) (outline.Result, error)
}

// Noop returns the outline unchanged.
type Noop struct{}

func (Noop) RefineOutline(ctx context.Context, res outline.Result) (outline.Result, error) {
	return res, nil
}

// Options select and configure the refiner.
type Options struct {
	Provider    string // none | gemini
	Model       string
	APIKey      string
	MaxAttempts uint
}

// New returns the refiner for opts.Provider.
func New(ctx context.Context, opts Options) (Refiner, error) {
	switch opts.Provider {
	case "", "none":
		return Noop{}, nil
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model, opts.MaxAttempts)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", opts.Provider)
	}
}

// merge applies the refined texts to orig. Heading count, levels and pages
// must match, and every text must equal the original once whitespace is
// ignored.
func merge(orig, refined outline.Result) (outline.Result, error) {
	if len(refined.Outline) != len(orig.Outline) {
		return orig, fmt.Errorf("%w: %d headings, want %d", ErrRejected, len(refined.Outline), len(orig.Outline))
	}
	if squash(refined.Title) != squash(orig.Title) {
		return orig, fmt.Errorf("%w: title changed", ErrRejected)
	}
	out := outline.Result{Title: refined.Title, Outline: make([]outline.Heading, len(orig.Outline))}
	for i, h := range orig.Outline {
		r := refined.Outline[i]
		if r.Level != h.Level || r.Page != h.Page {
			return orig, fmt.Errorf("%w: heading %d moved", ErrRejected, i)
		}
		if squash(r.Text) != squash(h.Text) {
			return orig, fmt.Errorf("%w: heading %d text changed", ErrRejected, i)
		}
		h.Text = strings.Join(strings.Fields(r.Text), " ")
		out.Outline[i] = h
	}
	return out, nil
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
