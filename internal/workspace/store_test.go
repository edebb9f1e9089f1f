package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_LoadEmptyWorkspace(t *testing.T) {
	s := NewStore(t.TempDir())

	tabs, err := s.LoadDocuments(context.Background(), "ws")
	if err != nil {
		t.Fatalf("LoadDocuments error = %v", err)
	}
	if len(tabs) != 1 {
		t.Fatalf("len(tabs) = %d, want 1", len(tabs))
	}
	if tabs[0].Title != DefaultTitle || tabs[0].Content != DefaultContent {
		t.Errorf("default tab = %+v", tabs[0])
	}
	if tabs[0].ID != TabID("ws", DefaultTitle) {
		t.Errorf("default tab id = %q", tabs[0].ID)
	}
}

func TestStore_SaveAndLoadOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	for _, title := range []string{"a", "b", "c"} {
		if err := s.SaveDocument(ctx, "ws", Tab{Title: title, Content: "-- " + title}); err != nil {
			t.Fatalf("SaveDocument(%s) error = %v", title, err)
		}
	}

	state := SessionState{
		ActiveTab: "id-b",
		TabOrder:  []string{"id-c", "id-a"},
		TabMetadata: []TabMetadata{
			{ID: "id-a", Title: "a.lua"},
			{ID: "id-c", Title: "c.lua"},
		},
	}
	if err := s.SaveSessionState(ctx, "ws", state); err != nil {
		t.Fatalf("SaveSessionState error = %v", err)
	}

	tabs, err := s.LoadDocuments(ctx, "ws")
	if err != nil {
		t.Fatalf("LoadDocuments error = %v", err)
	}

	wantTitles := []string{"c.lua", "a.lua", "b.lua"}
	wantIDs := []string{"id-c", "id-a", TabID("ws", "b.lua")}
	if len(tabs) != len(wantTitles) {
		t.Fatalf("len(tabs) = %d, want %d", len(tabs), len(wantTitles))
	}
	for i, tab := range tabs {
		if tab.Title != wantTitles[i] || tab.ID != wantIDs[i] {
			t.Errorf("tabs[%d] = %s/%s, want %s/%s", i, tab.Title, tab.ID, wantTitles[i], wantIDs[i])
		}
	}
	if tabs[0].Content != "-- c" {
		t.Errorf("content = %q, want %q", tabs[0].Content, "-- c")
	}
}

func TestStore_SessionStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	def, err := s.LoadSessionState(ctx, "ws")
	if err != nil {
		t.Fatalf("LoadSessionState error = %v", err)
	}
	id := TabID("ws", DefaultTitle)
	if def.ActiveTab != id || len(def.TabOrder) != 1 || def.TabMetadata[0].Title != DefaultTitle {
		t.Errorf("default state = %+v", def)
	}

	want := SessionState{
		ActiveTab:   "x",
		TabOrder:    []string{"x", "y"},
		TabMetadata: []TabMetadata{{ID: "x", Title: "x.lua"}, {ID: "y", Title: "y.lua"}},
	}
	if err := s.SaveSessionState(ctx, "ws", want); err != nil {
		t.Fatalf("SaveSessionState error = %v", err)
	}
	got, err := s.LoadSessionState(ctx, "ws")
	if err != nil {
		t.Fatalf("LoadSessionState error = %v", err)
	}
	if got.ActiveTab != want.ActiveTab || len(got.TabOrder) != 2 || got.TabOrder[1] != "y" {
		t.Errorf("state = %+v, want %+v", got, want)
	}
	if len(got.TabMetadata) != 2 || got.TabMetadata[1] != want.TabMetadata[1] {
		t.Errorf("metadata = %+v", got.TabMetadata)
	}
}

func TestStore_InvalidState(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())
	dir := s.TabsDir("ws")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadSessionState(ctx, "ws"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("LoadSessionState error = %v, want ErrInvalidState", err)
	}

	// Loading documents tolerates a broken state file.
	tabs, err := s.LoadDocuments(ctx, "ws")
	if err != nil || len(tabs) != 1 {
		t.Errorf("LoadDocuments = %v, %v", tabs, err)
	}
}

func TestStore_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	err := s.RenameDocument(ctx, "ws", "missing.lua", "other.lua")
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("RenameDocument missing error = %v, want ErrSourceMissing", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "rename" {
		t.Errorf("error = %#v, want OperationError for rename", err)
	}

	if err := s.SaveDocument(ctx, "ws", Tab{Title: "old", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RenameDocument(ctx, "ws", "old.lua", "new"); err != nil {
		t.Fatalf("RenameDocument error = %v", err)
	}
	if _, err := os.Stat(s.Path("ws", "new.lua")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if !s.IsOwnWrite(s.Path("ws", "new.lua"), []byte("x")) {
		t.Error("rename lost the own-write record")
	}

	if err := s.DeleteDocument(ctx, "ws", "new.lua"); err != nil {
		t.Fatalf("DeleteDocument error = %v", err)
	}
	if err := s.DeleteDocument(ctx, "ws", "new.lua"); err != nil {
		t.Errorf("DeleteDocument of missing file error = %v", err)
	}
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())
	content := "local Foo = 1\nprint(foo, FOO)\n-- nothing"
	if err := s.SaveDocument(ctx, "ws", Tab{Title: "a", Content: content}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(ctx, "ws", "foo")
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	want := []SearchResult{
		{Line: 1, Column: 7, EndColumn: 10, LineContent: "local Foo = 1"},
		{Line: 2, Column: 7, EndColumn: 10, LineContent: "print(foo, FOO)"},
	}
	for i, r := range results {
		if r.Line != want[i].Line || r.Column != want[i].Column ||
			r.EndColumn != want[i].EndColumn || r.LineContent != want[i].LineContent {
			t.Errorf("results[%d] = %+v, want %+v", i, r, want[i])
		}
		if r.Title != "a.lua" {
			t.Errorf("results[%d].Title = %q", i, r.Title)
		}
	}

	if results, _ := s.Search(ctx, "ws", "  "); results != nil {
		t.Errorf("blank query results = %v, want nil", results)
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.lua")
	if err := Export("print(1)", path); err != nil {
		t.Fatalf("Export error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "print(1)" {
		t.Errorf("exported = %q, %v", data, err)
	}

	if err := Export("x", filepath.Join(t.TempDir(), "no", "such", "dir.lua")); err == nil {
		t.Error("Export into missing directory should fail")
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore(t.TempDir())
	if err := s.SaveDocument(ctx, "ws", Tab{Title: "a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveDocument error = %v, want context.Canceled", err)
	}
}
