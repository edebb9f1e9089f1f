// Package textmodel implements the in-process editing surface: a text
// model per document and a single editor view that displays one model at
// a time.
package textmodel

import (
	"slices"
	"strings"
	"sync"
)

// ChangeEvent describes a content change.
type ChangeEvent struct {
	// Range is the replaced range in the content before the change.
	Range Range
	// Text is the inserted text.
	Text string
	// Full is true when the whole content was replaced.
	Full bool
	// VersionID is the model version after the change.
	VersionID int64
}

// edit records one reversible replacement at a byte offset.
type edit struct {
	offset   int
	removed  string
	inserted string
}

// Model holds the text of one document.
//
// Thread-safety: Model is safe for concurrent use. Listeners are called
// without the lock held, on the goroutine that made the change.
type Model struct {
	mu         sync.RWMutex
	text       string
	lineStarts []int
	versionID  int64
	undo       []edit
	redo       []edit
	listeners  map[int]func(ChangeEvent)
	nextID     int
	disposed   bool
}

// NewModel creates a model with the given content.
func NewModel(content string) *Model {
	m := &Model{
		text:      Normalize(content),
		versionID: 1,
		listeners: make(map[int]func(ChangeEvent)),
	}
	m.reindex()
	return m
}

func (m *Model) reindex() {
	m.lineStarts = m.lineStarts[:0]
	m.lineStarts = append(m.lineStarts, 0)
	for i := 0; i < len(m.text); i++ {
		if m.text[i] == '\n' {
			m.lineStarts = append(m.lineStarts, i+1)
		}
	}
}

// Value returns the full content.
func (m *Model) Value() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text
}

// VersionID returns a number that increases with every change.
func (m *Model) VersionID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versionID
}

// LineCount returns the number of lines. An empty model has one line.
func (m *Model) LineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lineStarts)
}

// LineContent returns the text of a 1-based line without its terminator.
func (m *Model) LineContent(line int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lineLocked(line)
}

func (m *Model) lineLocked(line int) string {
	if line < 1 || line > len(m.lineStarts) {
		return ""
	}
	start := m.lineStarts[line-1]
	end := len(m.text)
	if line < len(m.lineStarts) {
		end = m.lineStarts[line] - 1
	}
	return m.text[start:end]
}

// ValidatePosition clamps p to a position that exists in the model.
func (m *Model) ValidatePosition(p Position) Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validateLocked(p)
}

func (m *Model) validateLocked(p Position) Position {
	if p.Line < 1 {
		return Start
	}
	if p.Line > len(m.lineStarts) {
		last := len(m.lineStarts)
		return Position{Line: last, Column: len(m.lineLocked(last)) + 1}
	}
	return Position{Line: p.Line, Column: clampColumn(m.lineLocked(p.Line), p.Column)}
}

// OffsetAt converts a position into a byte offset, clamping out-of-range
// positions.
func (m *Model) OffsetAt(p Position) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offsetLocked(p)
}

func (m *Model) offsetLocked(p Position) int {
	p = m.validateLocked(p)
	return m.lineStarts[p.Line-1] + p.Column - 1
}

// PositionAt converts a byte offset into a position, clamping to the
// content bounds.
func (m *Model) PositionAt(offset int) Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positionLocked(offset)
}

func (m *Model) positionLocked(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.text) {
		offset = len(m.text)
	}
	lo, hi := 0, len(m.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo + 1, Column: offset - m.lineStarts[lo] + 1}
}

// WordAt returns the identifier touching p.
func (m *Model) WordAt(p Position) (Word, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = m.validateLocked(p)
	return WordAt(m.lineLocked(p.Line), p.Column)
}

// WordUntil returns the identifier prefix that ends at p.
func (m *Model) WordUntil(p Position) Word {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = m.validateLocked(p)
	return WordUntil(m.lineLocked(p.Line), p.Column)
}

// SetValue replaces the whole content. It is recorded for undo.
func (m *Model) SetValue(content string) {
	content = Normalize(content)

	m.mu.Lock()
	if m.disposed || content == m.text {
		m.mu.Unlock()
		return
	}
	full := Range{Start: Start, End: m.positionLocked(len(m.text))}
	e := edit{offset: 0, removed: m.text, inserted: content}
	ev := m.applyLocked(e, full, true)
	m.undo = append(m.undo, e)
	m.redo = nil
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, ev)
}

// ReplaceRange replaces the text in r with text and returns the position
// at the end of the inserted text.
func (m *Model) ReplaceRange(r Range, text string) Position {
	text = Normalize(text)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return r.Start
	}
	r = r.normalized()
	r = Range{Start: m.validateLocked(r.Start), End: m.validateLocked(r.End)}
	start, end := m.offsetLocked(r.Start), m.offsetLocked(r.End)
	if start == end && text == "" {
		m.mu.Unlock()
		return r.Start
	}
	e := edit{offset: start, removed: m.text[start:end], inserted: text}
	ev := m.applyLocked(e, r, false)
	m.undo = append(m.undo, e)
	m.redo = nil
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, ev)
	return endOf(r.Start, text)
}

// Undo reverts the last change. It returns false if there was none.
func (m *Model) Undo() bool {
	return m.step(&m.undo, &m.redo, true)
}

// Redo reapplies the last undone change.
func (m *Model) Redo() bool {
	return m.step(&m.redo, &m.undo, false)
}

func (m *Model) step(from, to *[]edit, invert bool) bool {
	m.mu.Lock()
	if m.disposed || len(*from) == 0 {
		m.mu.Unlock()
		return false
	}
	e := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, e)

	if invert {
		e = edit{offset: e.offset, removed: e.inserted, inserted: e.removed}
	}
	r := Range{
		Start: m.positionLocked(e.offset),
		End:   m.positionLocked(e.offset + len(e.removed)),
	}
	ev := m.applyLocked(e, r, false)
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, ev)
	return true
}

func (m *Model) applyLocked(e edit, r Range, full bool) ChangeEvent {
	var b strings.Builder
	b.Grow(len(m.text) - len(e.removed) + len(e.inserted))
	b.WriteString(m.text[:e.offset])
	b.WriteString(e.inserted)
	b.WriteString(m.text[e.offset+len(e.removed):])
	m.text = b.String()
	m.reindex()
	m.versionID++
	return ChangeEvent{Range: r, Text: e.inserted, Full: full, VersionID: m.versionID}
}

// OnContentChanged registers fn for content changes and returns a function
// that removes it.
func (m *Model) OnContentChanged(fn func(ChangeEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Model) listenersLocked() []func(ChangeEvent) {
	if len(m.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids) // registration order
	out := make([]func(ChangeEvent), len(ids))
	for i, id := range ids {
		out[i] = m.listeners[id]
	}
	return out
}

func notify(listeners []func(ChangeEvent), ev ChangeEvent) {
	for _, fn := range listeners {
		fn(ev)
	}
}

// Dispose releases the model. Listeners are dropped and later edits are
// ignored. Calling Dispose more than once has no effect.
func (m *Model) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.disposed = true
	m.listeners = make(map[int]func(ChangeEvent))
	m.undo = nil
	m.redo = nil
}

// IsDisposed reports whether Dispose has been called.
func (m *Model) IsDisposed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disposed
}
