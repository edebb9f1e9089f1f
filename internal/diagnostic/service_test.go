package diagnostic

import (
	"testing"
)

type change struct {
	id    string
	count int
}

func TestService_Publish(t *testing.T) {
	var changes []change
	s := NewService(NewAnalyzer(), WithChangeHandler(func(id string, markers []Marker) {
		changes = append(changes, change{id, len(markers)})
	}))

	markers := s.Publish("d1", "lua", "x = = 1\nlocal a = 1;;")
	if len(markers) != 2 {
		t.Fatalf("Publish() = %v, want an error and a warning", markers)
	}
	if e, w := s.Counts("d1"); e != 1 || w != 1 {
		t.Errorf("Counts() = %d, %d; want 1, 1", e, w)
	}

	// A clean pass replaces the whole set.
	s.Publish("d1", "lua", "local a = 1")
	if got := s.Markers("d1"); len(got) != 0 {
		t.Errorf("Markers() after fix = %v, want empty", got)
	}

	dm, ok := s.Document("d1")
	if !ok || dm.Version != 1 {
		t.Errorf("Document() = %+v, %v; want version 1", dm, ok)
	}

	if len(changes) != 2 || changes[0] != (change{"d1", 2}) || changes[1] != (change{"d1", 0}) {
		t.Errorf("changes = %v", changes)
	}
}

func TestService_UncoveredLanguage(t *testing.T) {
	called := false
	s := NewService(nil, WithChangeHandler(func(string, []Marker) { called = true }))

	if got := s.Publish("d1", "python", "x = = 1"); got != nil {
		t.Errorf("Publish() = %v, want nil", got)
	}
	if called {
		t.Error("change handler called for uncovered language")
	}
	if !s.Covers("LUA") {
		t.Error("Covers(LUA) = false")
	}
}

func TestService_SetEnabled(t *testing.T) {
	cleared := map[string]int{}
	s := NewService(nil, WithChangeHandler(func(id string, markers []Marker) {
		if len(markers) == 0 {
			cleared[id]++
		}
	}))

	s.Publish("a", "lua", "x = = 1")
	s.Publish("b", "lua", "y = = 2")

	s.SetEnabled(false)
	if cleared["a"] != 1 || cleared["b"] != 1 {
		t.Errorf("cleared = %v, want one empty notification per document", cleared)
	}
	if got := s.Markers("a"); got != nil {
		t.Errorf("Markers(a) = %v, want nil", got)
	}
	if got := s.Publish("a", "lua", "x = = 1"); got != nil {
		t.Error("Publish while disabled produced markers")
	}

	s.SetEnabled(true)
	if got := s.Publish("a", "lua", "x = = 1"); len(got) != 1 {
		t.Errorf("Publish after re-enable = %v", got)
	}
	if ids := s.DocumentsWithErrors(); len(ids) != 1 || ids[0] != "a" {
		t.Errorf("DocumentsWithErrors() = %v, want [a]", ids)
	}
}

func TestService_Clear(t *testing.T) {
	calls := 0
	s := NewService(nil, WithChangeHandler(func(string, []Marker) { calls++ }))

	s.Clear("missing")
	if calls != 0 {
		t.Error("Clear of unknown document notified")
	}

	s.Publish("d1", "lua", "x = = 1")
	s.Clear("d1")
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if s.Markers("d1") != nil {
		t.Error("markers remain after Clear")
	}
}
