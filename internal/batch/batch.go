// Package batch runs the outline pipeline over directories of PDFs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/pdf-outline/internal/ai"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/output"
	"github.com/thywilljoshua/pdf-outline/internal/source"
)

// Options control a Runner.
type Options struct {
	Workers       int
	Timeout       time.Duration // per document, source plus pipeline; zero disables
	RefineTimeout time.Duration // per refinement call, within Timeout; zero disables
	Validate      bool          // check written files against the output schema
	Recursive     bool
}

// Summary describes one Run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Runner processes documents with a shared source, classifier and refiner.
// The classifier can be swapped while documents are in flight.
type Runner struct {
	src        source.Source
	refiner    ai.Refiner
	opts       Options
	logger     *slog.Logger
	classifier atomic.Pointer[outline.Classifier]
}

func New(src source.Source, cls *outline.Classifier, refiner ai.Refiner, opts Options, logger *slog.Logger) *Runner {
	if refiner == nil {
		refiner = ai.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	r := &Runner{src: src, refiner: refiner, opts: opts, logger: logger}
	r.classifier.Store(cls)
	return r
}

// SetClassifier replaces the classifier used by documents started later.
func (r *Runner) SetClassifier(cls *outline.Classifier) {
	r.classifier.Store(cls)
}

// Process reads and classifies one document within the per-document
// deadline. Refinement failures are logged and the unrefined outline kept.
func (r *Runner) Process(ctx context.Context, path string) (outline.Result, outline.Diagnostics, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	doc, err := r.src.Read(ctx, path)
	if err != nil {
		return outline.Empty(), outline.Diagnostics{}, err
	}
	res, diag := r.classifier.Load().ExtractWithDiagnostics(doc)

	return r.refine(ctx, path, res), diag, nil
}

func (r *Runner) refine(ctx context.Context, path string, res outline.Result) outline.Result {
	if r.opts.RefineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RefineTimeout)
		defer cancel()
	}
	refined, err := r.refiner.RefineOutline(ctx, res)
	if err != nil {
		r.logger.Warn("refinement skipped", "path", path, "error", err)
		return res
	}
	return refined
}

// ProcessFile processes in and writes the result to out. When the document
// cannot be processed an empty result is written and the error returned.
func (r *Runner) ProcessFile(ctx context.Context, in, out string) error {
	start := time.Now()
	res, diag, err := r.Process(ctx, in)
	if err != nil {
		if werr := output.WriteFile(out, outline.Empty(), r.opts.Validate); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	if err := output.WriteFile(out, res, r.opts.Validate); err != nil {
		return err
	}
	r.logger.Info("document processed",
		"path", in,
		"output", out,
		"duration", time.Since(start),
		"elements", diag.Elements,
		"repaired", diag.Repaired,
		"pattern_only", diag.PatternOnly,
		"candidates", diag.Candidates,
		"excluded", diag.ExcludedTotal(),
		"headings", len(res.Outline),
	)
	return nil
}

// Run processes every PDF under inDir, mirroring the directory layout in
// outDir as <stem>.json files. A failing document does not stop the others.
func (r *Runner) Run(ctx context.Context, inDir, outDir string) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", sum.RunID)

	files, err := Discover(inDir, r.opts.Recursive)
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}
	sum.Total = len(files)
	logger.Info("batch started", "input", inDir, "output", outDir, "documents", sum.Total, "workers", r.opts.Workers)

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, in := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := OutputPath(inDir, outDir, in)
			if err == nil {
				err = r.ProcessFile(ctx, in, out)
			}
			if err != nil {
				failed.Add(1)
				logger.Error("document failed", "path", in, "error", err)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	sum.Failed = int(failed.Load())
	sum.Succeeded = int(succeeded.Load())
	sum.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	logger.Info("batch finished", "succeeded", sum.Succeeded, "failed", sum.Failed, "duration", sum.Duration)
	return sum, nil
}

// IsPDF reports whether path has a .pdf extension, in any case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Discover lists the PDFs under dir in lexical order.
func Discover(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsPDF(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return files, nil
}

// OutputPath maps a PDF under inDir to its JSON file under outDir.
func OutputPath(inDir, outDir, pdfPath string) (string, error) {
	rel, err := filepath.Rel(inDir, pdfPath)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", pdfPath, inDir)
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".json"), nil
}
