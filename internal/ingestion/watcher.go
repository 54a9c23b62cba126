package ingestion

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/vault"
)

// DefaultDebounce is the settle window for filesystem events. Editors
// produce bursts of writes per save; one index pass per burst is enough.
const DefaultDebounce = 100 * time.Millisecond

// queueCapacity bounds the change queue feeding the worker.
const queueCapacity = 64

// EventKind classifies a watcher-driven index change.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventError   EventKind = "error"
)

// Event is one watcher-driven index change. Node is set for created,
// updated, and deleted events; Err is set for error events.
type Event struct {
	Kind EventKind
	Path string
	Node *graph.Node
	Err  error
}

// changeOp is a raw filesystem operation awaiting its debounce window.
type changeOp int

const (
	opAdd changeOp = iota
	opChange
	opRemove
)

type pendingChange struct {
	op    changeOp
	timer *time.Timer
}

// change is one coalesced operation handed to the worker.
type change struct {
	path string // absolute
	op   changeOp
}

// Watcher keeps the graph synchronized with the vault by re-indexing
// files as they change. Raw filesystem events are debounced per path
// and coalesced, so an editor save burst costs one index pass. Settled
// changes feed a bounded queue consumed by a single worker; a change
// firing while its path is already queued or being indexed is dropped,
// since the next save will fire again.
//
// A Watcher runs once: after Run returns, the event channel is closed
// and the watcher cannot be restarted.
type Watcher struct {
	pipeline *Pipeline
	walker   *vault.Walker
	logger   *slog.Logger
	debounce time.Duration
	events   chan Event
	queue    chan change

	mu       sync.Mutex
	pending  map[string]*pendingChange
	inflight map[string]bool
	stopped  bool
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher driving the given pipeline. A debounce
// of zero or less falls back to DefaultDebounce.
func NewWatcher(pipeline *Pipeline, logger *slog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		pipeline: pipeline,
		walker:   pipeline.walker,
		logger:   logger,
		debounce: debounce,
		events:   make(chan Event, 16),
		queue:    make(chan change, queueCapacity),
		pending:  make(map[string]*pendingChange),
		inflight: make(map[string]bool),
	}
}

// Events returns the stream of index changes. The channel closes when
// Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run watches the vault until ctx is cancelled. Directories created at
// runtime are added to the watch list as they appear. Returns nil on
// cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addDirsRecursive(fsw, w.walker.Root()); err != nil {
		return err
	}

	w.startWorker(ctx)

	w.logger.Info("watcher started",
		slog.String("root", w.walker.Root()),
		slog.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			w.logger.Info("watcher stopped")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				w.shutdown()
				return nil
			}
			w.handleRawEvent(ctx, fsw, ev)

		case fsErr, ok := <-fsw.Errors:
			if !ok {
				w.shutdown()
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", fsErr.Error()))
			w.emit(ctx, Event{Kind: EventError, Err: fsErr})
		}
	}
}

// startWorker launches the single consumer of the change queue.
func (w *Watcher) startWorker(ctx context.Context) {
	w.wg.Add(1)
	go w.worker(ctx)
}

func (w *Watcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-w.queue:
			w.apply(ctx, c.path, c.op)
			w.mu.Lock()
			delete(w.inflight, c.path)
			w.mu.Unlock()
		}
	}
}

// handleRawEvent folds one raw fsnotify event into the pending set.
func (w *Watcher) handleRawEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	// A created directory needs a watch before its contents produce
	// events, and anything already inside arrived without one.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchNewDir(ctx, fsw, ev.Name)
			return
		}
	}

	if !w.walker.Accepts(ev.Name) {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		w.schedule(ctx, ev.Name, opAdd)
	case ev.Op&fsnotify.Write != 0:
		w.schedule(ctx, ev.Name, opChange)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename fires on the old path only; the new path arrives
		// as its own create event.
		w.schedule(ctx, ev.Name, opRemove)
	}
}

// schedule merges the operation into the path's pending change and
// re-arms its debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string, op changeOp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.op = mergeOps(p.op, op)
		p.timer.Reset(w.debounce)
		return
	}
	p := &pendingChange{op: op}
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx, path) })
	w.pending[path] = p
}

// mergeOps coalesces two raw operations on the same path within one
// debounce window.
func mergeOps(old, next changeOp) changeOp {
	switch {
	case old == opAdd && next == opRemove:
		// Created and removed inside the window: a transient file.
		return opRemove
	case old == opAdd:
		return opAdd
	case old == opRemove && next != opRemove:
		// Removed and recreated inside the window: a replace.
		return opChange
	default:
		return next
	}
}

// fire runs when a path's debounce window expires. A path already
// queued or being indexed drops the change rather than queueing behind
// itself.
func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.stopped {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	if w.inflight[path] {
		w.mu.Unlock()
		w.logger.Debug("change dropped for busy path", slog.String("path", path))
		return
	}
	w.inflight[path] = true
	w.mu.Unlock()

	select {
	case w.queue <- change{path: path, op: p.op}:
	case <-ctx.Done():
		w.mu.Lock()
		delete(w.inflight, path)
		w.mu.Unlock()
	}
}

// apply performs the coalesced operation against the pipeline.
func (w *Watcher) apply(ctx context.Context, path string, op changeOp) {
	rel, err := w.walker.RelativePath(path)
	if err != nil {
		rel = path
	}

	if op == opRemove {
		node, err := w.pipeline.RemoveFile(ctx, rel)
		if err != nil {
			w.logger.Warn("watcher remove failed",
				slog.String("path", rel),
				slog.String("error", err.Error()))
			w.emit(ctx, Event{Kind: EventError, Path: rel, Err: err})
			return
		}
		if node == nil {
			return
		}
		w.emit(ctx, Event{Kind: EventDeleted, Path: rel, Node: node})
		return
	}

	node, err := w.pipeline.IndexFile(ctx, path)
	if err != nil {
		w.logger.Warn("watcher index failed",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		w.emit(ctx, Event{Kind: EventError, Path: rel, Err: err})
		return
	}
	kind := EventUpdated
	if op == opAdd {
		kind = EventCreated
	}
	w.emit(ctx, Event{Kind: kind, Path: rel, Node: node})
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// watchNewDir adds a directory created at runtime to the watch list and
// schedules any markdown files already inside it. Files moved in along
// with the directory never fire their own events.
func (w *Watcher) watchNewDir(ctx context.Context, fsw *fsnotify.Watcher, dir string) {
	if w.walker.IgnoresDir(dir) {
		return
	}
	if err := w.addDirsRecursive(fsw, dir); err != nil {
		w.logger.Warn("watch new directory failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.walker.IgnoresDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.walker.Accepts(path) {
			w.schedule(ctx, path, opAdd)
		}
		return nil
	})
}

// addDirsRecursive adds root and its subdirectories to the watcher,
// skipping ignored directories. Watching the data directory would feed
// the index's own writes back into the watcher.
func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.walker.Root() && w.walker.IgnoresDir(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// shutdown cancels pending timers, waits for the worker to finish, and
// closes the event channel. Safe to call more than once.
func (w *Watcher) shutdown() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = make(map[string]*pendingChange)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
}
