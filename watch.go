package litpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-litpipe/internal/fileutil"
)

// DefaultWatchInterval is the pause between two polls.
const DefaultWatchInterval = time.Second

// CompileFunc compiles one watched file and returns the artifact path.
// PDFPipeline.Convert and HTMLPipeline.Convert fit behind one.
type CompileFunc func(ctx context.Context, path string) (string, error)

// Watcher recompiles files whose modification time advances. Files are
// checked and compiled one at a time, in the order given.
type Watcher struct {
	Files    []string
	Interval time.Duration // pause between polls ("0" = DefaultWatchInterval)
	Compile  CompileFunc

	// ContinueOnError logs compile and stat failures and keeps watching.
	// By default the first failure ends Run.
	ContinueOnError bool

	// Stat reports a file's modification time (default fileutil.ModTime).
	Stat func(path string) (time.Time, error)

	Logger *slog.Logger

	baseline []time.Time
}

// NewWatcher creates a Watcher polling files every DefaultWatchInterval.
func NewWatcher(files []string, compile CompileFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		Files:    append([]string(nil), files...),
		Interval: DefaultWatchInterval,
		Compile:  compile,
		Logger:   logger,
	}
}

// Run compiles every file once, then polls until ctx is done or a failure
// ends the loop. With context.Background it runs until the process stops.
// Cancellation is checked between files and around every pause; Run then
// returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	if w.Compile == nil {
		return errors.New("watcher has no compile function")
	}
	if err := w.warmUp(ctx); err != nil {
		return err
	}

	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	w.logger().Info("watching for changes", "files", len(w.Files), "interval", interval)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if err := w.Poll(ctx); err != nil {
			return err
		}
		timer.Reset(interval)
	}
}

// warmUp compiles every file unconditionally and records baselines.
func (w *Watcher) warmUp(ctx context.Context) error {
	w.baseline = make([]time.Time, len(w.Files))
	for i, file := range w.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		mtime, err := w.stat(file)
		if err != nil {
			if err := w.fail(ctx, file, err); err != nil {
				return err
			}
		}
		w.baseline[i] = mtime
		if err := w.compile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// Poll observes every file once and compiles those whose modification time
// is strictly after its baseline. Every baseline is then the time observed
// in this poll, changed or not. A file that cannot be stat'ed keeps its
// baseline.
func (w *Watcher) Poll(ctx context.Context) error {
	if len(w.baseline) != len(w.Files) {
		w.baseline = make([]time.Time, len(w.Files))
	}

	observed := make([]time.Time, len(w.Files))
	for i, file := range w.Files {
		mtime, err := w.stat(file)
		if err != nil {
			if err := w.fail(ctx, file, err); err != nil {
				return err
			}
			mtime = w.baseline[i]
		}
		observed[i] = mtime
	}

	// Every baseline moves forward before compiling, so an interrupted
	// pass does not report the remaining files again on the next one.
	changed := make([]bool, len(w.Files))
	for i := range w.Files {
		changed[i] = observed[i].After(w.baseline[i])
		w.baseline[i] = observed[i]
	}

	for i, file := range w.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !changed[i] {
			continue
		}
		w.logger().Info("change detected", "file", file)
		if err := w.compile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// Baseline returns the recorded modification time of file.
func (w *Watcher) Baseline(file string) (time.Time, bool) {
	for i, f := range w.Files {
		if f == file && i < len(w.baseline) {
			return w.baseline[i], true
		}
	}
	return time.Time{}, false
}

func (w *Watcher) compile(ctx context.Context, file string) error {
	out, err := w.Compile(ctx, file)
	if err != nil {
		return w.fail(ctx, file, err)
	}
	w.logger().Info("compiled", "file", file, "output", out)
	return nil
}

// fail decides whether err ends the loop. Cancellation always does.
func (w *Watcher) fail(ctx context.Context, file string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !w.ContinueOnError {
		return fmt.Errorf("watching %s: %w", file, err)
	}
	w.logger().Error("failed, still watching", "file", file, "error", err)
	return nil
}

func (w *Watcher) stat(file string) (time.Time, error) {
	if w.Stat == nil {
		return fileutil.ModTime(file)
	}
	return w.Stat(file)
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
