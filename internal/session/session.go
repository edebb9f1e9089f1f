// Package session owns the set of open documents: one backing model per
// document, the saved view state of every document that is not shown, and
// debounced persistence of document content.
//
// Operations on unknown or closed document ids are no-ops, since tabs can
// close while asynchronous work is still in flight.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dshills/scriptsense/internal/debounce"
	"github.com/dshills/scriptsense/internal/logging"
)

// DefaultPersistDelay is the quiet period before content is written.
const DefaultPersistDelay = 300 * time.Millisecond

// Document is one open buffer.
type Document struct {
	ID       string
	Title    string
	Content  string
	Language string
}

// Model is the backing text model of a document.
type Model interface {
	Value() string
	SetValue(content string)
	Dispose()
}

// Surface is the single editing view. The manager shows one model at a
// time on it and treats its view state as opaque.
type Surface[M Model, V any] interface {
	SetModel(m M)
	SaveViewState() V
	RestoreViewState(v V)
	ResetView()
}

// Persister stores document content.
type Persister interface {
	SaveDocument(ctx context.Context, workspaceID string, doc Document) error
}

type entry[M Model, V any] struct {
	doc     Document
	model   M
	view    V
	hasView bool
}

// Manager is the arena of open documents.
//
// Thread-safety: methods are safe for concurrent use, but the surface is
// only touched from the goroutine calling Open, SwitchTo, Close and
// Dispose. Debounced writes run on timer goroutines and only read models.
type Manager[M Model, V any] struct {
	mu        sync.Mutex
	surface   Surface[M, V]
	newModel  func(Document) M
	persister Persister
	workspace string
	logger    *logging.Logger
	timeout   time.Duration
	onError   func(docID string, err error)
	onSaved   func(docID string)

	entries  map[string]*entry[M, V]
	order    []string
	active   string
	writes   *debounce.Group[string]
	disposed bool
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	persister Persister
	workspace string
	logger    *logging.Logger
	delay     time.Duration
	timeout   time.Duration
	onError   func(docID string, err error)
	onSaved   func(docID string)
}

// WithPersister sets where content is written and the workspace id passed
// with every write.
func WithPersister(p Persister, workspaceID string) Option {
	return func(o *options) {
		o.persister = p
		o.workspace = workspaceID
	}
}

// WithPersistDelay sets the debounce delay for writes.
func WithPersistDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithPersistTimeout bounds every write.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// OnPersistError sets a hook for failed writes. The in-memory document is
// kept as it is.
func OnPersistError(fn func(docID string, err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// OnPersisted sets a hook called after every successful write.
func OnPersisted(fn func(docID string)) Option {
	return func(o *options) {
		o.onSaved = fn
	}
}

// New creates a manager that shows documents on surface and builds their
// models with newModel.
func New[M Model, V any](surface Surface[M, V], newModel func(Document) M, opts ...Option) *Manager[M, V] {
	o := options{
		logger:  logging.Nop(),
		delay:   DefaultPersistDelay,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager[M, V]{
		surface:   surface,
		newModel:  newModel,
		persister: o.persister,
		workspace: o.workspace,
		logger:    o.logger,
		timeout:   o.timeout,
		onError:   o.onError,
		onSaved:   o.onSaved,
		entries:   make(map[string]*entry[M, V]),
	}
	m.writes = debounce.NewGroup(o.delay, m.write)
	return m
}

// Open registers doc and creates its model. Opening an id that is already
// open returns the existing model unchanged.
func (m *Manager[M, V]) Open(doc Document) (M, bool) {
	return m.open(doc, nil)
}

// OpenWithView is Open with a view state to restore the first time the
// document is shown.
func (m *Manager[M, V]) OpenWithView(doc Document, view V) (M, bool) {
	return m.open(doc, &view)
}

func (m *Manager[M, V]) open(doc Document, view *V) (M, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero M
	if m.disposed || doc.ID == "" {
		return zero, false
	}
	if e, ok := m.entries[doc.ID]; ok {
		return e.model, true
	}

	e := &entry[M, V]{doc: doc, model: m.newModel(doc)}
	if view != nil {
		e.view = *view
		e.hasView = true
	}
	m.entries[doc.ID] = e
	m.order = append(m.order, doc.ID)
	m.logger.Debug("opened document %s (%s)", doc.ID, doc.Title)
	return e.model, true
}

// SwitchTo shows the document id. The outgoing document's view state is
// saved first; the incoming one's is restored, or the view is reset to
// the start when it has none.
func (m *Manager[M, V]) SwitchTo(id string) bool {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false
	}
	in, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if id == m.active {
		m.mu.Unlock()
		return true
	}
	out := m.entries[m.active]
	m.mu.Unlock()

	if out != nil {
		view := m.surface.SaveViewState()
		m.mu.Lock()
		out.view = view
		out.hasView = true
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.active = id
	view, hasView := in.view, in.hasView
	m.mu.Unlock()

	m.surface.SetModel(in.model)
	if hasView {
		m.surface.RestoreViewState(view)
	} else {
		m.surface.ResetView()
	}
	return true
}

// UpdateContent replaces the model content of id when it differs from
// content. It reports whether the model changed.
func (m *Manager[M, V]) UpdateContent(id, content string) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || m.disposed {
		m.mu.Unlock()
		return false
	}
	model := e.model
	m.mu.Unlock()

	if model.Value() == content {
		return false
	}
	model.SetValue(content)
	return true
}

// Persist schedules a write of id. Writes scheduled within the debounce
// delay coalesce into one.
func (m *Manager[M, V]) Persist(id string) {
	m.mu.Lock()
	_, ok := m.entries[id]
	ok = ok && !m.disposed && m.persister != nil
	m.mu.Unlock()

	if ok {
		m.writes.Schedule(id)
	}
}

// Flush performs the pending write of id now. It reports whether a write
// was pending.
func (m *Manager[M, V]) Flush(id string) bool {
	return m.writes.Flush(id)
}

// FlushAll performs every pending write now.
func (m *Manager[M, V]) FlushAll() int {
	return m.writes.FlushAll()
}

// PersistPending reports whether id has a scheduled write.
func (m *Manager[M, V]) PersistPending(id string) bool {
	return m.writes.Pending(id)
}

func (m *Manager[M, V]) write(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	doc := e.doc
	model := e.model
	persister := m.persister
	m.mu.Unlock()

	doc.Content = model.Value()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := persister.SaveDocument(ctx, m.workspace, doc); err != nil {
		m.logger.Error("persist %s (%s): %v", doc.ID, doc.Title, err)
		if m.onError != nil {
			m.onError(doc.ID, err)
		}
		return
	}

	m.mu.Lock()
	if e, ok := m.entries[id]; ok {
		e.doc.Content = doc.Content
	}
	m.mu.Unlock()

	if m.onSaved != nil {
		m.onSaved(doc.ID)
	}
}

// Close disposes the model of id and forgets the document. A pending write
// is dropped. When the active document closes, the last remaining document
// in order becomes active. It reports whether id was open.
func (m *Manager[M, V]) Close(id string) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || m.disposed {
		m.mu.Unlock()
		return false
	}
	delete(m.entries, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	wasActive := m.active == id
	next := ""
	if wasActive {
		m.active = ""
		if len(m.order) > 0 {
			next = m.order[len(m.order)-1]
		}
	}
	m.mu.Unlock()

	m.writes.Cancel(id)

	if wasActive {
		var zero M
		m.surface.SetModel(zero)
	}
	e.model.Dispose()
	m.logger.Debug("closed document %s", id)

	if next != "" {
		m.SwitchTo(next)
	}
	return true
}

// Rename changes the title of id.
func (m *Manager[M, V]) Rename(id, title string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || m.disposed {
		return false
	}
	e.doc.Title = title
	return true
}

// Reorder sets the document order. Listed ids come first in the given
// order; open documents that are not listed keep their relative order
// after them. Unknown ids are ignored.
func (m *Manager[M, V]) Reorder(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(m.order))
	order := make([]string, 0, len(m.order))
	for _, id := range ids {
		if _, ok := m.entries[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, id := range m.order {
		if !seen[id] {
			order = append(order, id)
		}
	}
	m.order = order
}

// Document returns the document id with its current content.
func (m *Manager[M, V]) Document(id string) (Document, bool) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return Document{}, false
	}
	doc, model := e.doc, e.model
	m.mu.Unlock()

	doc.Content = model.Value()
	return doc, true
}

// Documents returns every open document in order.
func (m *Manager[M, V]) Documents() []Document {
	m.mu.Lock()
	ids := slices.Clone(m.order)
	m.mu.Unlock()

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.Document(id); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Order returns the document ids in order.
func (m *Manager[M, V]) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Len returns the number of open documents.
func (m *Manager[M, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ActiveID returns the id of the shown document, or "".
func (m *Manager[M, V]) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Active returns the shown document.
func (m *Manager[M, V]) Active() (Document, bool) {
	return m.Document(m.ActiveID())
}

// Model returns the backing model of id.
func (m *Manager[M, V]) Model(id string) (M, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		var zero M
		return zero, false
	}
	return e.model, true
}

// Dispose writes pending content, disposes every model and clears all
// saved view states. Later calls do nothing.
func (m *Manager[M, V]) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.writes.FlushAll()
	m.writes.Stop()

	m.mu.Lock()
	m.disposed = true
	entries := m.entries
	order := m.order
	hadActive := m.active != ""
	m.entries = make(map[string]*entry[M, V])
	m.order = nil
	m.active = ""
	m.mu.Unlock()

	if hadActive {
		var zero M
		m.surface.SetModel(zero)
	}
	for _, id := range order {
		entries[id].model.Dispose()
	}
	m.logger.Debug("session disposed, %d documents released", len(order))
}

// Disposed reports whether Dispose has been called.
func (m *Manager[M, V]) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}
