package textmodel

import (
	"slices"
	"sync"
	"unicode/utf8"
)

// CursorReason tells listeners why the cursor moved.
type CursorReason int

const (
	// CursorExplicit is a user navigation (arrow keys, mouse click).
	CursorExplicit CursorReason = iota
	// CursorEdit is a move caused by typing or an applied edit.
	CursorEdit
	// CursorRestore is a move caused by restoring a view state.
	CursorRestore
)

// String returns the reason name.
func (r CursorReason) String() string {
	switch r {
	case CursorExplicit:
		return "explicit"
	case CursorEdit:
		return "edit"
	case CursorRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// CursorEvent is delivered to cursor listeners.
type CursorEvent struct {
	Position Position
	Reason   CursorReason
}

// ScrollOffset is the first visible line and column of the view.
type ScrollOffset struct {
	Top  int
	Left int
}

// ViewState is a snapshot of the editor view for one document.
type ViewState struct {
	Cursor Position
	Scroll ScrollOffset
}

// Editor is the single view that displays one model at a time.
//
// Listeners are called without the lock held.
type Editor struct {
	mu        sync.Mutex
	model     *Model
	cursor    Position
	scroll    ScrollOffset
	listeners map[int]func(CursorEvent)
	nextID    int
}

// NewEditor creates an editor with no model.
func NewEditor() *Editor {
	return &Editor{
		cursor:    Start,
		listeners: make(map[int]func(CursorEvent)),
	}
}

// SetModel attaches m to the view. A nil model detaches the current one.
// The cursor is clamped to the new content.
func (e *Editor) SetModel(m *Model) {
	e.mu.Lock()
	e.model = m
	if m != nil {
		e.cursor = m.ValidatePosition(e.cursor)
	}
	e.mu.Unlock()
}

// Model returns the attached model, or nil.
func (e *Editor) Model() *Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// Cursor returns the cursor position.
func (e *Editor) Cursor() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetCursor moves the cursor and notifies listeners.
func (e *Editor) SetCursor(p Position, reason CursorReason) {
	e.mu.Lock()
	if e.model != nil {
		p = e.model.ValidatePosition(p)
	}
	e.cursor = p
	e.mu.Unlock()

	e.fire(CursorEvent{Position: p, Reason: reason})
}

// Scroll returns the scroll offset.
func (e *Editor) Scroll() ScrollOffset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scroll
}

// SetScroll sets the scroll offset.
func (e *Editor) SetScroll(s ScrollOffset) {
	e.mu.Lock()
	e.scroll = s
	e.mu.Unlock()
}

// Type inserts text at the cursor and moves the cursor past it.
func (e *Editor) Type(text string) {
	text = Normalize(text)
	e.mu.Lock()
	m := e.model
	if m == nil || m.IsDisposed() || text == "" {
		e.mu.Unlock()
		return
	}
	at := m.ValidatePosition(e.cursor)
	e.mu.Unlock()

	e.edit(m, Range{Start: at, End: at}, text)
}

// Backspace deletes the character before the cursor, joining lines at the
// start of a line.
func (e *Editor) Backspace() {
	e.mu.Lock()
	m := e.model
	if m == nil || m.IsDisposed() {
		e.mu.Unlock()
		return
	}
	at := m.ValidatePosition(e.cursor)
	e.mu.Unlock()

	var from Position
	switch {
	case at.Column > 1:
		line := m.LineContent(at.Line)
		_, size := utf8.DecodeLastRuneInString(line[:at.Column-1])
		from = Position{Line: at.Line, Column: at.Column - size}
	case at.Line > 1:
		prev := m.LineContent(at.Line - 1)
		from = Position{Line: at.Line - 1, Column: len(prev) + 1}
	default:
		return
	}
	e.edit(m, Range{Start: from, End: at}, "")
}

// ExecuteEdit replaces r with text and places the cursor after the
// inserted text.
func (e *Editor) ExecuteEdit(r Range, text string) {
	e.mu.Lock()
	m := e.model
	e.mu.Unlock()
	if m == nil || m.IsDisposed() {
		return
	}
	r = r.normalized()
	r = Range{Start: m.ValidatePosition(r.Start), End: m.ValidatePosition(r.End)}
	e.edit(m, r, Normalize(text))
}

// edit moves the cursor before applying the change so content listeners
// observe the post-edit cursor, then reports the move.
func (e *Editor) edit(m *Model, r Range, text string) {
	end := endOf(r.Start, text)
	e.mu.Lock()
	e.cursor = end
	e.mu.Unlock()

	m.ReplaceRange(r, text)
	e.fire(CursorEvent{Position: end, Reason: CursorEdit})
}

// SaveViewState snapshots the cursor and scroll offset.
func (e *Editor) SaveViewState() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ViewState{Cursor: e.cursor, Scroll: e.scroll}
}

// RestoreViewState applies a snapshot taken by SaveViewState.
func (e *Editor) RestoreViewState(vs ViewState) {
	e.mu.Lock()
	p := vs.Cursor
	if e.model != nil {
		p = e.model.ValidatePosition(p)
	}
	e.cursor = p
	e.scroll = vs.Scroll
	e.mu.Unlock()

	e.fire(CursorEvent{Position: p, Reason: CursorRestore})
}

// ResetView moves the cursor to (1,1) and scrolls to the top.
func (e *Editor) ResetView() {
	e.mu.Lock()
	e.cursor = Start
	e.scroll = ScrollOffset{}
	e.mu.Unlock()

	e.fire(CursorEvent{Position: Start, Reason: CursorRestore})
}

// OnCursorMoved registers fn for cursor moves and returns a function that
// removes it.
func (e *Editor) OnCursorMoved(fn func(CursorEvent)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Editor) fire(ev CursorEvent) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(CursorEvent), len(ids))
	for i, id := range ids {
		fns[i] = e.listeners[id]
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
