// Package watch reports changes to a set of Markdown files.
//
// Directories are watched rather than files because editors commonly save
// by writing a temp file and renaming it over the original, which drops a
// watch placed on the file itself. Events for other files in the same
// directories are ignored. Bursts are coalesced: the callback runs once the
// watched files have been quiet for the debounce interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before the callback runs.
const DefaultDebounce = 200 * time.Millisecond

// ErrNoFiles is returned by New when there is nothing to watch.
var ErrNoFiles = errors.New("no files to watch")

// Watcher watches files and invokes a callback after changes settle.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange func(paths []string)
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New watches the directories holding files. onChange receives the sorted
// absolute paths that changed during the burst.
func New(files []string, onChange func(paths []string), opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	w.fsw = fsw
	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Run processes events until ctx is canceled, then closes the watcher.
// The callback runs on Run's goroutine, so calls never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("file event", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			w.logger.Debug("files changed", zap.Strings("paths", changed))
			if w.onChange != nil {
				w.onChange(changed)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// relevant keeps writes and creates of watched files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}
