package textmodel

import "testing"

func TestEditor_TypeMovesCursorBeforeNotify(t *testing.T) {
	m := NewModel("local ")
	e := NewEditor()
	e.SetModel(m)
	e.SetCursor(Position{1, 7}, CursorExplicit)

	var seen Position
	m.OnContentChanged(func(ChangeEvent) { seen = e.Cursor() })

	var reasons []CursorReason
	e.OnCursorMoved(func(ev CursorEvent) { reasons = append(reasons, ev.Reason) })

	e.Type("fo")

	if got := m.Value(); got != "local fo" {
		t.Errorf("Value() = %q, want %q", got, "local fo")
	}
	if seen != (Position{1, 9}) {
		t.Errorf("cursor seen by content listener = %v, want (1:9)", seen)
	}
	if len(reasons) != 1 || reasons[0] != CursorEdit {
		t.Errorf("reasons = %v, want [edit]", reasons)
	}
}

func TestEditor_TypeNewline(t *testing.T) {
	e := NewEditor()
	e.SetModel(NewModel("ab"))
	e.SetCursor(Position{1, 2}, CursorExplicit)

	e.Type("x\ny")

	if got := e.Model().Value(); got != "ax\nyb" {
		t.Errorf("Value() = %q, want %q", got, "ax\nyb")
	}
	if got := e.Cursor(); got != (Position{2, 2}) {
		t.Errorf("Cursor() = %v, want (2:2)", got)
	}
}

func TestEditor_Backspace(t *testing.T) {
	e := NewEditor()
	m := NewModel("ab\ncé")
	e.SetModel(m)

	e.SetCursor(Position{2, 4}, CursorExplicit)
	e.Backspace()
	if got := m.Value(); got != "ab\nc" {
		t.Errorf("after multibyte backspace Value() = %q", got)
	}

	e.SetCursor(Position{2, 1}, CursorExplicit)
	e.Backspace()
	if got := m.Value(); got != "abc" {
		t.Errorf("after line join Value() = %q", got)
	}
	if got := e.Cursor(); got != (Position{1, 3}) {
		t.Errorf("Cursor() = %v, want (1:3)", got)
	}

	e.SetCursor(Start, CursorExplicit)
	e.Backspace()
	if got := m.Value(); got != "abc" {
		t.Errorf("backspace at start changed content: %q", got)
	}
}

func TestEditor_ExecuteEdit(t *testing.T) {
	e := NewEditor()
	m := NewModel("local fo")
	e.SetModel(m)
	e.SetCursor(Position{1, 9}, CursorExplicit)

	e.ExecuteEdit(NewRange(1, 7, 1, 9), "foo")

	if got := m.Value(); got != "local foo" {
		t.Errorf("Value() = %q, want %q", got, "local foo")
	}
	if got := e.Cursor(); got != (Position{1, 10}) {
		t.Errorf("Cursor() = %v, want (1:10)", got)
	}
}

func TestEditor_ViewState(t *testing.T) {
	e := NewEditor()
	e.SetModel(NewModel("line1\nline2\nline3"))
	e.SetCursor(Position{2, 3}, CursorExplicit)
	e.SetScroll(ScrollOffset{Top: 1, Left: 2})

	vs := e.SaveViewState()
	e.ResetView()

	if e.Cursor() != Start || e.Scroll() != (ScrollOffset{}) {
		t.Errorf("ResetView left cursor %v scroll %v", e.Cursor(), e.Scroll())
	}

	e.RestoreViewState(vs)
	if e.Cursor() != (Position{2, 3}) {
		t.Errorf("Cursor() = %v, want (2:3)", e.Cursor())
	}
	if e.Scroll() != (ScrollOffset{Top: 1, Left: 2}) {
		t.Errorf("Scroll() = %v, want {1 2}", e.Scroll())
	}
}

func TestEditor_SetCursorClamps(t *testing.T) {
	e := NewEditor()
	e.SetModel(NewModel("ab"))
	e.SetCursor(Position{5, 9}, CursorExplicit)
	if got := e.Cursor(); got != (Position{1, 3}) {
		t.Errorf("Cursor() = %v, want (1:3)", got)
	}
}
