// Package watch processes PDFs as they are dropped into an input directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/thywilljoshua/pdf-outline/internal/batch"
)

var errNotReady = errors.New("file still being written")

// Watcher feeds new and rewritten PDFs under an input directory to a batch
// runner.
type Watcher struct {
	runner *batch.Runner
	in     string
	out    string
	logger *slog.Logger

	// Settle is the pause between size checks while waiting for a writer
	// to finish; Attempts bounds the checks.
	Settle   time.Duration
	Attempts uint

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

func New(runner *batch.Runner, in, out string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		runner:   runner,
		in:       in,
		out:      out,
		logger:   logger,
		Settle:   500 * time.Millisecond,
		Attempts: 20,
		inflight: make(map[string]bool),
	}
}

// Run watches until ctx is done. Files already present are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.in); err != nil {
		return err
	}
	if _, err := w.runner.Run(ctx, w.in, w.out); err != nil {
		return err
	}
	w.logger.Info("watching for documents", "input", w.in, "output", w.out)

	defer w.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	fi, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if fi.IsDir() {
		if ev.Has(fsnotify.Create) {
			w.addDir(ctx, fw, ev.Name)
		}
		return
	}
	if batch.IsPDF(ev.Name) {
		w.schedule(ctx, ev.Name)
	}
}

// addDir watches a directory created after startup and picks up the PDFs
// that landed in it before the watch was in place.
func (w *Watcher) addDir(ctx context.Context, fw *fsnotify.Watcher, dir string) {
	if err := w.addTree(fw, dir); err != nil {
		w.logger.Warn("cannot watch directory", "path", dir, "error", err)
		return
	}
	files, err := batch.Discover(dir, true)
	if err != nil {
		w.logger.Warn("cannot scan directory", "path", dir, "error", err)
		return
	}
	for _, f := range files {
		w.schedule(ctx, f)
	}
}

// schedule processes path in the background unless it is already queued.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	if w.inflight[path] {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()
		w.process(ctx, path)
	}()
}

func (w *Watcher) process(ctx context.Context, path string) {
	if err := w.waitReady(ctx, path); err != nil {
		w.logger.Warn("document never settled", "path", path, "error", err)
		return
	}
	out, err := batch.OutputPath(w.in, w.out, path)
	if err != nil {
		w.logger.Error("document failed", "path", path, "error", err)
		return
	}
	if err := w.runner.ProcessFile(ctx, path, out); err != nil {
		w.logger.Error("document failed", "path", path, "error", err)
	}
}

// waitReady returns once the file size is non-zero and unchanged between
// two checks.
func (w *Watcher) waitReady(ctx context.Context, path string) error {
	last := int64(-1)
	return retry.Do(
		func() error {
			fi, err := os.Stat(path)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			size := fi.Size()
			if size == 0 || size != last {
				last = size
				return errNotReady
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(w.Attempts),
		retry.Delay(w.Settle),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
