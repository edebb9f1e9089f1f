package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/scriptsense/internal/diagnostic"
	"github.com/dshills/scriptsense/internal/session"
	"github.com/dshills/scriptsense/internal/workspace"
)

// DefaultLanguage is assigned to documents opened without a language.
const DefaultLanguage = "lua"

const storeTimeout = 5 * time.Second

// OpenDocument registers doc, analyzes it and makes it available for
// switching. A document without an id gets a new one. It returns the id,
// or "" after shutdown.
func (a *Application) OpenDocument(doc session.Document) string {
	if a.isShutdown() {
		return ""
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Language == "" {
		doc.Language = DefaultLanguage
	}
	doc.Title = workspace.SanitizeTitle(doc.Title)
	model, ok := a.sessions.Open(doc)
	if !ok {
		return ""
	}
	a.retryCatalog()
	a.subscribe(doc, model)
	a.publishMarkers(doc.ID)
	a.stateSaver.Call()
	return doc.ID
}

// NewDocument opens an empty document titled untitled_N.lua with the
// lowest free N, shows it and schedules its first write.
func (a *Application) NewDocument() string {
	title := a.freeTitle("untitled")
	id := a.OpenDocument(session.Document{
		Title:   title,
		Content: workspace.DefaultContent,
	})
	a.show(id)
	return id
}

// ImportDocument opens content under title, renaming it when the title
// is taken, shows it and schedules its first write.
func (a *Application) ImportDocument(title, content string) string {
	name := workspace.SanitizeTitle(title)
	if a.titleTaken(name) {
		name = a.freeTitle(strings.TrimSuffix(name, workspace.Extension))
	}
	id := a.OpenDocument(session.Document{Title: name, Content: content})
	a.show(id)
	return id
}

func (a *Application) show(id string) {
	if id == "" {
		return
	}
	a.SwitchDocument(id)
	a.sessions.Persist(id)
}

func (a *Application) titleTaken(title string) bool {
	for _, doc := range a.sessions.Documents() {
		if strings.EqualFold(doc.Title, title) {
			return true
		}
	}
	return false
}

func (a *Application) freeTitle(base string) string {
	for n := 1; ; n++ {
		title := fmt.Sprintf("%s_%d%s", base, n, workspace.Extension)
		if !a.titleTaken(title) {
			return title
		}
	}
}

// SwitchDocument shows the document id, saving the view state of the one
// it replaces. The popup is hidden.
func (a *Application) SwitchDocument(id string) bool {
	if !a.sessions.SwitchTo(id) {
		return false
	}
	a.popup.Dismiss()
	a.retryCatalog()
	a.stateSaver.Call()
	return true
}

// retryCatalog starts another catalog load in the background while the
// catalog has not loaded. Loads already in flight are shared.
func (a *Application) retryCatalog() {
	if a.catalog.Loaded() || a.isShutdown() {
		return
	}
	a.catalog.LoadAsync(context.Background())
}

// CloseDocument closes id and deletes its file. When it was shown, the
// last remaining document is shown instead.
func (a *Application) CloseDocument(id string) bool {
	doc, ok := a.sessions.Document(id)
	if !ok {
		return false
	}
	return a.close(doc, true)
}

func (a *Application) close(doc session.Document, deleteFile bool) bool {
	wasActive := a.sessions.ActiveID() == doc.ID
	a.unsubscribe(doc.ID)
	if !a.sessions.Close(doc.ID) {
		return false
	}
	a.markers.Clear(doc.ID)
	if wasActive {
		a.popup.Dismiss()
	}

	if deleteFile {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := a.store.DeleteDocument(ctx, a.workspace, doc.Title); err != nil {
			a.notify(Notification{Level: NotifyError, Source: "persistence", DocumentID: doc.ID, Message: "could not delete document file", Err: err})
		}
	}
	a.stateSaver.Call()
	return true
}

// RenameDocument gives id a new title and moves its file. A document that
// was never written is simply saved under the new title.
func (a *Application) RenameDocument(id, title string) bool {
	doc, ok := a.sessions.Document(id)
	if !ok {
		return false
	}
	name := workspace.SanitizeTitle(title)
	if name == doc.Title {
		return true
	}
	if a.titleTaken(name) {
		a.notify(Notification{Level: NotifyWarning, Source: "persistence", DocumentID: id, Message: fmt.Sprintf("a document named %s already exists", name)})
		return false
	}

	a.sessions.Flush(id)
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	err := a.store.RenameDocument(ctx, a.workspace, doc.Title, name)
	switch {
	case err == nil:
	case errors.Is(err, workspace.ErrSourceMissing):
		defer a.sessions.Persist(id)
	default:
		a.notify(Notification{Level: NotifyError, Source: "persistence", DocumentID: id, Message: "could not rename document file", Err: err})
		return false
	}

	a.sessions.Rename(id, name)
	a.stateSaver.Call()
	return true
}

// ReorderDocuments sets the tab order.
func (a *Application) ReorderDocuments(ids []string) {
	a.sessions.Reorder(ids)
	a.stateSaver.Call()
}

// Documents returns the open documents in tab order.
func (a *Application) Documents() []session.Document {
	return a.sessions.Documents()
}

// Document returns the open document id.
func (a *Application) Document(id string) (session.Document, bool) {
	return a.sessions.Document(id)
}

// ActiveDocument returns the shown document.
func (a *Application) ActiveDocument() (session.Document, bool) {
	return a.sessions.Active()
}

// Markers returns the markers of id.
func (a *Application) Markers(id string) []diagnostic.Marker {
	return a.markers.Markers(id)
}

// Search finds query in the open documents, first match per line.
func (a *Application) Search(query string) []workspace.SearchResult {
	docs := a.sessions.Documents()
	tabs := make([]workspace.Tab, len(docs))
	for i, doc := range docs {
		tabs[i] = tabFromDocument(doc)
	}
	return workspace.SearchTabs(tabs, query)
}

// ExportDocument writes the content of id to path.
func (a *Application) ExportDocument(id, path string) error {
	doc, ok := a.sessions.Document(id)
	if !ok {
		return fmt.Errorf("export %s: %w", id, ErrDocumentNotFound)
	}
	return workspace.Export(doc.Content, path)
}

// ApplyExternalChange brings a change made on disk into the open
// documents. Unknown titles are opened; removed files close their
// document without touching the disk again.
func (a *Application) ApplyExternalChange(c workspace.Change) {
	doc, open := a.documentByTitle(c.Title)

	switch {
	case c.Removed:
		if open {
			a.close(doc, false)
			a.notify(Notification{Level: NotifyInfo, Source: "watcher", DocumentID: doc.ID, Message: fmt.Sprintf("%s was removed on disk", c.Title)})
		}
	case open:
		a.external = true
		a.sessions.UpdateContent(doc.ID, c.Content)
		a.external = false
	default:
		a.OpenDocument(session.Document{
			ID:      workspace.TabID(a.workspace, c.Title),
			Title:   c.Title,
			Content: c.Content,
		})
	}
}

func (a *Application) documentByTitle(title string) (session.Document, bool) {
	title = workspace.SanitizeTitle(title)
	for _, doc := range a.sessions.Documents() {
		if doc.Title == title {
			return doc, true
		}
	}
	return session.Document{}, false
}
