// Package watcher reports changes to the settings file.
package watcher

import (
	"context"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/meshcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 100 * time.Millisecond

const eventChannelBuffer = 16

// Watcher watches a single file through its parent directory, so that editors
// replacing the file by rename are still observed.
type Watcher struct {
	window time.Duration
	logger ports.Logger

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	target    string
	lastOp    ports.WatchOp
	events    chan ports.WatchEvent
	closed    bool
}

// NewWatcher creates a watcher that coalesces events within window.
func NewWatcher(logger ports.Logger, window time.Duration) *Watcher {
	return &Watcher{
		window: window,
		logger: logger,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
	}
}

// Start begins watching path. The events channel closes when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve watch path"), "path", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", filepath.Dir(abs))
	}

	w.mu.Lock()
	w.fsWatcher = fsw
	w.target = abs
	w.debouncer = NewDebouncer(w.window, w.emit)
	w.mu.Unlock()

	go w.processEvents(ctx, fsw)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw := w.fsWatcher
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	return fsw.Close()
}

// Events returns an iterator of debounced events for the watched file.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			_ = fsw.Close()
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	op, ok := convertOp(event.Op)
	if !ok {
		return
	}

	w.mu.Lock()
	if filepath.Clean(event.Name) != w.target {
		w.mu.Unlock()
		return
	}
	w.lastOp = op
	d := w.debouncer
	w.mu.Unlock()

	d.Add(event.Name)
}

// emit is the debouncer callback.
func (w *Watcher) emit(_ []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case w.events <- ports.WatchEvent{Path: w.target, Operation: w.lastOp}:
	default:
		// A reload is already queued; it will read the latest file.
	}
}

// shutdown delivers a change still inside the debounce window, then closes the events channel.
func (w *Watcher) shutdown() {
	w.mu.Lock()
	d := w.debouncer
	w.mu.Unlock()
	if d != nil {
		d.Flush()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Remove):
		return ports.OpRemove, true
	case op.Has(fsnotify.Rename):
		return ports.OpRename, true
	default:
		return 0, false
	}
}
