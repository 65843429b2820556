// Package watcher reports changes to settings files.
//
// Files are watched through their parent directory so that editors which
// save by rename are still seen. Rapid changes are coalesced before
// handlers run.
package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when using a stopped watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Watched files, and how many of them live in each directory
	files map[string]bool
	dirs  map[string]int

	handlers []Handler
	log      *slog.Logger

	closed bool
	done   chan struct{}
	wg     sync.WaitGroup

	debounce     time.Duration
	pendingMu    sync.Mutex
	pendingFiles map[string]pendingEvent
}

// pendingEvent stores a pending event with its operation for debouncing.
type pendingEvent struct {
	Op   Operation
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:          fsw,
		files:        make(map[string]bool),
		dirs:         make(map[string]int),
		log:          slog.Default(),
		done:         make(chan struct{}),
		debounce:     100 * time.Millisecond,
		pendingFiles: make(map[string]pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("component", "watcher")

	w.wg.Add(1)
	go w.processLoop()
	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop()
	}
	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet, but
// its directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Close stops the watcher and waits for its goroutines.
// Handlers are not called after Close returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			event, ok := w.convert(fsEvent)
			if !ok {
				continue
			}
			if w.debounce > 0 {
				w.queueEvent(event)
			} else {
				w.emitEvent(event)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// convert maps an fsnotify event on a watched file to an Event.
func (w *Watcher) convert(fsEvent fsnotify.Event) (Event, bool) {
	path, err := filepath.Abs(fsEvent.Name)
	if err != nil {
		return Event{}, false
	}

	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return Event{}, false
	}

	var op Operation
	switch {
	case fsEvent.Has(fsnotify.Remove):
		op = OpRemove
	case fsEvent.Has(fsnotify.Rename):
		op = OpRename
	case fsEvent.Has(fsnotify.Create):
		op = OpCreate
	case fsEvent.Has(fsnotify.Write):
		op = OpWrite
	default:
		return Event{}, false
	}
	return Event{Path: path, Op: op, Time: time.Now()}, true
}

// queueEvent queues an event for debounced delivery.
// It coalesces events:
// - create + write => create
// - write + write => write (latest time)
// - any + remove => remove
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pendingFiles[event.Path]
	if !exists {
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
		return
	}

	switch event.Op {
	case OpRemove, OpCreate:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	case OpWrite:
		// Write doesn't override create or remove
		w.pendingFiles[event.Path] = pendingEvent{Op: existing.Op, Time: event.Time}
	default:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.processPendingEvents()
		}
	}
}

// processPendingEvents emits events that have been stable for the
// debounce duration.
func (w *Watcher) processPendingEvents() {
	w.pendingMu.Lock()
	stableThreshold := time.Now().Add(-w.debounce)

	var toEmit []Event
	for path, pending := range w.pendingFiles {
		if pending.Time.Before(stableThreshold) {
			toEmit = append(toEmit, Event{
				Path: path,
				Op:   pending.Op,
				Time: pending.Time,
			})
			delete(w.pendingFiles, path)
		}
	}
	w.pendingMu.Unlock()

	for _, event := range toEmit {
		w.emitEvent(event)
	}
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return
	}
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler calls a handler, logging instead of crashing on panic.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("watch handler panicked", "path", event.Path, "panic", r)
		}
	}()
	handler(event)
}
