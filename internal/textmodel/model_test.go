package textmodel

import "testing"

func TestModel_Lines(t *testing.T) {
	m := NewModel("local a = 1\r\nprint(a)\n")

	if got := m.Value(); got != "local a = 1\nprint(a)\n" {
		t.Errorf("Value() = %q, want CRLF normalized", got)
	}
	if got := m.LineCount(); got != 3 {
		t.Errorf("LineCount() = %d, want 3", got)
	}

	tests := []struct {
		line int
		want string
	}{
		{1, "local a = 1"},
		{2, "print(a)"},
		{3, ""},
		{0, ""},
		{4, ""},
	}
	for _, tt := range tests {
		if got := m.LineContent(tt.line); got != tt.want {
			t.Errorf("LineContent(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestModel_OffsetPosition(t *testing.T) {
	m := NewModel("ab\ncde\n\nf")

	tests := []struct {
		offset int
		pos    Position
	}{
		{0, Position{1, 1}},
		{2, Position{1, 3}},
		{3, Position{2, 1}},
		{6, Position{2, 4}},
		{7, Position{3, 1}},
		{8, Position{4, 1}},
		{9, Position{4, 2}},
	}
	for _, tt := range tests {
		if got := m.PositionAt(tt.offset); got != tt.pos {
			t.Errorf("PositionAt(%d) = %v, want %v", tt.offset, got, tt.pos)
		}
		if got := m.OffsetAt(tt.pos); got != tt.offset {
			t.Errorf("OffsetAt(%v) = %d, want %d", tt.pos, got, tt.offset)
		}
	}

	if got := m.PositionAt(-5); got != Start {
		t.Errorf("PositionAt(-5) = %v, want %v", got, Start)
	}
	if got := m.PositionAt(100); got != (Position{4, 2}) {
		t.Errorf("PositionAt(100) = %v, want (4:2)", got)
	}
	if got := m.OffsetAt(Position{2, 99}); got != 6 {
		t.Errorf("OffsetAt((2:99)) = %d, want 6", got)
	}
	if got := m.OffsetAt(Position{99, 1}); got != 9 {
		t.Errorf("OffsetAt((99:1)) = %d, want 9", got)
	}
}

func TestModel_Words(t *testing.T) {
	m := NewModel("local foo_bar = obj:method()")

	w, ok := m.WordAt(Position{1, 9})
	if !ok || w.Text != "foo_bar" || w.StartColumn != 7 || w.EndColumn != 14 {
		t.Errorf("WordAt((1:9)) = %+v, %v; want foo_bar 7..14", w, ok)
	}

	// A cursor right after the word still touches it.
	w, ok = m.WordAt(Position{1, 14})
	if !ok || w.Text != "foo_bar" {
		t.Errorf("WordAt((1:14)) = %+v, %v; want foo_bar", w, ok)
	}

	if _, ok := m.WordAt(Position{1, 16}); ok {
		t.Error("WordAt on '=' should report no word")
	}

	u := m.WordUntil(Position{1, 10})
	if u.Text != "foo" || u.StartColumn != 7 || u.EndColumn != 10 {
		t.Errorf("WordUntil((1:10)) = %+v, want foo 7..10", u)
	}

	u = m.WordUntil(Position{1, 7})
	if u.Text != "" {
		t.Errorf("WordUntil after space = %q, want empty", u.Text)
	}
}

func TestModel_ReplaceRangeAndUndo(t *testing.T) {
	m := NewModel("local fo")

	var events []ChangeEvent
	unsubscribe := m.OnContentChanged(func(ev ChangeEvent) {
		events = append(events, ev)
	})

	end := m.ReplaceRange(NewRange(1, 7, 1, 9), "foo")
	if got := m.Value(); got != "local foo" {
		t.Fatalf("Value() = %q, want %q", got, "local foo")
	}
	if end != (Position{1, 10}) {
		t.Errorf("end = %v, want (1:10)", end)
	}
	if len(events) != 1 || events[0].Text != "foo" || events[0].Full {
		t.Errorf("events = %+v, want one incremental change", events)
	}

	if !m.Undo() {
		t.Fatal("Undo() = false")
	}
	if got := m.Value(); got != "local fo" {
		t.Errorf("after Undo Value() = %q, want %q", got, "local fo")
	}
	if !m.Redo() {
		t.Fatal("Redo() = false")
	}
	if got := m.Value(); got != "local foo" {
		t.Errorf("after Redo Value() = %q, want %q", got, "local foo")
	}
	if m.Redo() {
		t.Error("Redo() with empty stack = true")
	}

	unsubscribe()
	m.SetValue("x")
	if len(events) != 3 {
		t.Errorf("events after unsubscribe = %d, want 3", len(events))
	}
}

func TestModel_SetValue(t *testing.T) {
	m := NewModel("a")
	v := m.VersionID()

	var full bool
	m.OnContentChanged(func(ev ChangeEvent) { full = ev.Full })

	m.SetValue("a")
	if m.VersionID() != v {
		t.Error("SetValue with identical content changed the version")
	}

	m.SetValue("b\nc")
	if !full {
		t.Error("SetValue should report a full change")
	}
	if m.VersionID() <= v {
		t.Error("VersionID did not increase")
	}
}

func TestModel_Dispose(t *testing.T) {
	m := NewModel("abc")
	called := false
	m.OnContentChanged(func(ChangeEvent) { called = true })

	m.Dispose()
	m.Dispose()

	if !m.IsDisposed() {
		t.Error("IsDisposed() = false after Dispose")
	}
	m.SetValue("changed")
	m.ReplaceRange(NewRange(1, 1, 1, 1), "x")
	if m.Value() != "abc" {
		t.Errorf("disposed model changed: %q", m.Value())
	}
	if called {
		t.Error("listener called after Dispose")
	}
}

func TestLineHelpers(t *testing.T) {
	text := "one\ntwo\nthree"
	if got := Line(text, 2); got != "two" {
		t.Errorf("Line(2) = %q, want two", got)
	}
	if got := Line(text, 3); got != "three" {
		t.Errorf("Line(3) = %q, want three", got)
	}
	if got := Line(text, 4); got != "" {
		t.Errorf("Line(4) = %q, want empty", got)
	}
	if got := Normalize("a\rb\r\nc"); got != "a\nb\nc" {
		t.Errorf("Normalize = %q", got)
	}
}
