package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitChange returns the first change accepted by match.
func waitChange(t *testing.T, w *Watcher, match func(Change) bool) (Change, bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c := <-w.Changes():
			if match(c) {
				return c, true
			}
		case <-timeout:
			return Change{}, false
		}
	}
}

func TestWatcher_ExternalWrite(t *testing.T) {
	s := NewStore(t.TempDir())
	w, err := s.Watch("ws")
	if err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(s.TabsDir("ws"), "ext.lua")
	if err := os.WriteFile(path, []byte("print('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, ok := waitChange(t, w, func(c Change) bool { return c.Content != "" })
	if !ok {
		t.Fatal("timed out waiting for change")
	}
	if c.Title != "ext.lua" || c.Content != "print('hi')" || c.Removed {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	s := NewStore(t.TempDir())
	w, err := s.Watch("ws")
	if err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	defer w.Close()

	if err := s.SaveDocument(context.Background(), "ws", Tab{Title: "own", Content: "x = 1"}); err != nil {
		t.Fatal(err)
	}
	// Non-document files are ignored as well.
	if err := os.WriteFile(filepath.Join(s.TabsDir("ws"), "notes.txt"), []byte("n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Changes():
		t.Errorf("unexpected change %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Remove(t *testing.T) {
	s := NewStore(t.TempDir())
	path := filepath.Join(s.TabsDir("ws"), "gone.lua")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := s.Watch("ws")
	if err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	c, ok := waitChange(t, w, func(c Change) bool { return c.Removed })
	if !ok {
		t.Fatal("timed out waiting for removal")
	}
	if !c.Removed || c.Title != "gone.lua" {
		t.Errorf("change = %+v, want removal of gone.lua", c)
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	s := NewStore(t.TempDir())
	w, err := s.Watch("ws")
	if err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
	if err := w.Close(); err != ErrWatcherClosed {
		t.Errorf("second Close error = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("Changes channel not closed")
	}
}
