// Package watcher keeps a directory tree free of downloaded-file markers by
// reacting to file system events as downloads appear.
package watcher

import (
	"context"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/streams"
	"github.com/unblocker/unblocker/internal/unblock"
)

const (
	// defaultSettle is how long a path has to stay quiet before it is
	// processed. Browsers attach the marker stream right after the download
	// finishes, processing on the first event would be too early.
	defaultSettle = 500 * time.Millisecond
	// flushInterval is how often settled paths are collected.
	flushInterval = 100 * time.Millisecond
)

// Options modify how Run behaves.
type Options struct {
	// Initial processes the whole tree once before watching starts.
	Initial bool
	// Settle overrides the debounce window, zero selects the default.
	Settle time.Duration
	// OnChange, when non-nil, is called for every file processed because of
	// an event.
	OnChange func(path string, outcome unblock.Outcome)
}

// Watcher reacts to changes below a root directory and removes markers from
// files as they appear. Run drives everything from a single goroutine and
// blocks until the context is canceled.
type Watcher struct {
	cfg  *unblock.Config
	root string
	opts Options

	stats    unblock.Stats
	debounce map[string]time.Time
}

// New prepares a watcher for the tree below root.
func New(cfg *unblock.Config, root string, opts Options) *Watcher {
	return &Watcher{
		cfg:      cfg,
		root:     root,
		opts:     opts,
		debounce: make(map[string]time.Time),
	}
}

func (w *Watcher) settle() time.Duration {
	if w.opts.Settle > 0 {
		return w.opts.Settle
	}
	return defaultSettle
}

func (w *Watcher) warnf(msg string, args ...interface{}) {
	if w.cfg.Sink != nil {
		w.cfg.Sink.Warnf(msg, args...)
	}
}

// Run watches until ctx is canceled and returns the statistics accumulated
// over all processed files. Cancellation is the normal way to stop, the
// returned error is ctx.Err() in that case.
func (w *Watcher) Run(ctx context.Context) (unblock.Stats, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w.stats, errors.Wrap(err, "start watcher")
	}
	defer func() {
		_ = fsw.Close()
	}()

	if err := w.watchTree(fsw, w.root); err != nil {
		return w.stats, err
	}

	if w.opts.Initial {
		stats, err := unblock.Walk(ctx, w.cfg, w.root)
		w.stats.Add(stats)
		if err != nil {
			return w.stats, err
		}
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.stats, ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return w.stats, nil
			}
			if err := w.handleEvent(ctx, fsw, event); err != nil {
				return w.stats, err
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return w.stats, nil
			}
			w.warnf("watch: %v", err)

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// watchTree registers root and every directory below it. Unreadable
// subtrees are reported and skipped, the watch still covers the rest.
func (w *Watcher) watchTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.warnf("watch %v: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			if path == root {
				return errors.Wrapf(err, "watch %v", path)
			}
			w.warnf("watch %v: %v", path, err)
		}
		return nil
	})
}

// handleEvent notes changed files for later processing. A new directory is
// added to the watch and processed right away, since files may have landed
// in it before the watch was in place. Events for a marker stream are
// attributed to the file it belongs to.
func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) error {
	path := streams.TrimStream(event.Name)

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(w.debounce, path)
		return nil
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return nil
	}

	if event.Op&fsnotify.Create != 0 {
		if fi, err := fs.Lstat(event.Name); err == nil && fi.IsDir() {
			if err := w.watchTree(fsw, event.Name); err != nil {
				w.warnf("watch %v: %v", event.Name, err)
				return nil
			}
			stats, err := unblock.Walk(ctx, w.cfg, event.Name)
			w.stats.Add(stats)
			return err
		}
	}

	w.debounce[path] = time.Now()
	debug.Log("noted change for %v (%v)", path, event.Op)
	return nil
}

// flush processes the paths whose last event has settled.
func (w *Watcher) flush(now time.Time) {
	for path, last := range w.debounce {
		if now.Sub(last) < w.settle() {
			continue
		}
		delete(w.debounce, path)

		fi, err := fs.Lstat(path)
		if err != nil || !fs.IsRegularFile(fi) {
			debug.Log("skipping %v, no longer a regular file", path)
			continue
		}

		outcome, err := unblock.Unblock(w.cfg, path)
		w.stats.Record(outcome, err)
		if err != nil {
			w.warnf("%v", err)
		}
		if w.opts.OnChange != nil {
			w.opts.OnChange(path, outcome)
		}
	}
}
