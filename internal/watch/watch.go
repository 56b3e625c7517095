// Package watch monitors a source directory and coalesces bursts of file
// changes into single batch re-runs.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	derrors "git.home.luguber.info/inful/docnorm/internal/errors"
)

// Options tunes a Watcher. Zero values select the defaults.
type Options struct {
	// QuietWindow is how long the directory must stay quiet before a
	// pending change triggers a run.
	QuietWindow time.Duration

	// MaxDelay bounds how long a run can be postponed by a continuous
	// stream of changes.
	MaxDelay time.Duration

	// Extensions limits which file suffixes trigger runs. Defaults to the
	// supported source formats.
	Extensions []string
}

const (
	defaultQuietWindow = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

var defaultExtensions = []string{".md", ".markdown"}

// Watcher watches one directory tree for source changes. Create with New,
// drive with Run; a Watcher is single-use.
type Watcher struct {
	dir  string
	opts Options
	fsw  *fsnotify.Watcher
}

// New creates a Watcher over dir and registers dir plus its existing
// subdirectories with the file system notifier.
func New(dir string, opts Options) (*Watcher, error) {
	if dir == "" {
		return nil, derrors.ValidationError("watch directory is required")
	}
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = defaultQuietWindow
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = defaultExtensions
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "resolving watch directory")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryInternal, derrors.SeverityFatal, "creating file watcher")
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "watching "+abs)
	}

	return &Watcher{dir: abs, opts: opts, fsw: fsw}, nil
}

// Run blocks until ctx is cancelled, invoking fn after each debounced burst
// of relevant changes. Errors from fn are logged, not fatal: the watch loop
// keeps running so a broken edit can be fixed and retried by saving again.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	defer w.fsw.Close()

	trigger := make(chan string, 64)
	go w.eventLoop(ctx, trigger)

	slog.Info("Watching for changes",
		slog.String("dir", w.dir),
		slog.Duration("quiet_window", w.opts.QuietWindow))

	debounce(ctx, trigger, w.opts.QuietWindow, w.opts.MaxDelay, func(runCtx context.Context, changed int) {
		slog.Info("Changes settled, running batch", slog.Int("changed_files", changed))
		if err := fn(runCtx); err != nil {
			slog.Error("Batch run failed", slog.Any("error", err))
		}
	})
	return ctx.Err()
}

// eventLoop filters raw notifier events down to relevant source changes.
// New subdirectories are added to the watch set as they appear.
func (w *Watcher) eventLoop(ctx context.Context, trigger chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && filepath.Ext(event.Name) == "" {
				// Likely a new directory; watching it is best effort.
				if err := w.fsw.Add(event.Name); err == nil {
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			select {
			case trigger <- event.Name:
			default:
				// Burst overflow is fine, one trigger is already pending.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range w.opts.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// debounce coalesces trigger events: fire after quiet of silence, but never
// later than max after the first event of a burst.
func debounce(ctx context.Context, trigger <-chan string, quiet, max time.Duration, fire func(context.Context, int)) {
	var (
		quietTimer = time.NewTimer(time.Hour)
		maxTimer   = time.NewTimer(time.Hour)
		quietC     <-chan time.Time
		maxC       <-chan time.Time
		changed    int
	)
	stopTimer := func(t *time.Timer) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
	}
	stopTimer(quietTimer)
	stopTimer(maxTimer)
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	emit := func() {
		stopTimer(quietTimer)
		stopTimer(maxTimer)
		quietC, maxC = nil, nil
		n := changed
		changed = 0
		fire(ctx, n)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-trigger:
			if !ok {
				return
			}
			slog.Debug("Source change detected", slog.String("file", name))
			if changed == 0 {
				stopTimer(maxTimer)
				maxTimer.Reset(max)
				maxC = maxTimer.C
			}
			changed++
			stopTimer(quietTimer)
			quietTimer.Reset(quiet)
			quietC = quietTimer.C
		case <-quietC:
			emit()
		case <-maxC:
			emit()
		}
	}
}
