package workspace

import (
	"crypto/sha256"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const watchBuffer = 64

// Change reports that a document file was modified outside the store.
type Change struct {
	Title   string
	Path    string
	Content string
	Removed bool
}

// Watcher delivers external changes to the documents of one workspace.
// Writes made by the store itself are not reported.
type Watcher struct {
	store   *Store
	dir     string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	seen   map[string][sha256.Size]byte
	closed bool

	changes chan Change
	errors  chan error
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Watch starts watching the tabs directory of workspaceID, creating it if
// needed.
func (s *Store) Watch(workspaceID string) (*Watcher, error) {
	dir := s.TabsDir(workspaceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, opError("watch", workspaceID, "", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, opError("watch", workspaceID, "", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, opError("watch", workspaceID, "", err)
	}

	w := &Watcher{
		store:   s,
		dir:     dir,
		watcher: fsw,
		seen:    make(map[string][sha256.Size]byte),
		changes: make(chan Change, watchBuffer),
		errors:  make(chan error, watchBuffer),
		closeCh: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processLoop()

	s.logger.Debug("watching %s", dir)
	return w, nil
}

// Changes returns the change channel. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Calling Close more than once returns
// ErrWatcherClosed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.changes)
	close(w.errors)
	return w.watcher.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != Extension {
		return
	}
	title := filepath.Base(ev.Name)

	switch {
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.seen, ev.Name)
		w.mu.Unlock()
		if _, err := os.Stat(ev.Name); errors.Is(err, fs.ErrNotExist) {
			w.send(Change{Title: title, Path: ev.Name, Removed: true})
		}

	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		data, err := os.ReadFile(ev.Name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.sendError(err)
			}
			return
		}
		// A create or truncate is followed by a write when the file has
		// content.
		if len(data) == 0 && (!ev.Op.Has(fsnotify.Write) || w.store.tracks(ev.Name)) {
			return
		}
		if w.store.IsOwnWrite(ev.Name, data) {
			return
		}

		sum := sha256.Sum256(data)
		w.mu.Lock()
		prev, ok := w.seen[ev.Name]
		w.seen[ev.Name] = sum
		w.mu.Unlock()
		if ok && prev == sum {
			return
		}
		w.send(Change{Title: title, Path: ev.Name, Content: string(data)})
	}
}

func (w *Watcher) send(c Change) {
	select {
	case w.changes <- c:
	case <-w.closeCh:
	default:
		w.store.logger.Warn("change channel full, dropping %s", c.Title)
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}
