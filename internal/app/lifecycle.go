package app

import (
	"context"
	"errors"

	"github.com/dshills/scriptsense/internal/workspace"
)

// LoadWorkspace opens every stored document in saved order, shows the
// saved active document (or the first one) and starts loading the
// catalog in the background. The returned channel reports the catalog
// load result.
func (a *Application) LoadWorkspace(ctx context.Context) (<-chan error, error) {
	if a.isShutdown() {
		return nil, ErrShutdown
	}

	catalogDone := a.catalog.LoadAsync(ctx)

	tabs, err := a.store.LoadDocuments(ctx, a.workspace)
	if err != nil {
		return catalogDone, err
	}
	state, err := a.store.LoadSessionState(ctx, a.workspace)
	if err != nil {
		a.notify(Notification{Level: NotifyWarning, Source: "persistence", Message: "tab state unreadable, using defaults", Err: err})
	}

	for _, tab := range tabs {
		a.OpenDocument(documentFromTab(tab))
	}

	active := state.ActiveTab
	if _, ok := a.sessions.Document(active); !ok {
		active = ""
		if order := a.sessions.Order(); len(order) > 0 {
			active = order[0]
		}
	}
	if active != "" {
		a.SwitchDocument(active)
	}
	a.logger.Info("workspace %s loaded with %d documents", a.workspace, len(tabs))
	return catalogDone, nil
}

// SessionState returns the tab bar as it would be written to disk.
func (a *Application) SessionState() workspace.SessionState {
	docs := a.sessions.Documents()
	state := workspace.SessionState{
		ActiveTab:   a.sessions.ActiveID(),
		TabOrder:    make([]string, 0, len(docs)),
		TabMetadata: make([]workspace.TabMetadata, 0, len(docs)),
	}
	for _, doc := range docs {
		state.TabOrder = append(state.TabOrder, doc.ID)
		state.TabMetadata = append(state.TabMetadata, workspace.TabMetadata{ID: doc.ID, Title: doc.Title})
	}
	return state
}

// SaveSessionState writes the tab bar to disk.
func (a *Application) SaveSessionState(ctx context.Context) error {
	return a.store.SaveSessionState(ctx, a.workspace, a.SessionState())
}

// Watch starts reporting external edits of the workspace files. The host
// passes every change to ApplyExternalChange from its event loop.
func (a *Application) Watch() (*workspace.Watcher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.shutdown {
		return nil, ErrShutdown
	}
	if a.watcher != nil {
		return a.watcher, nil
	}
	w, err := a.store.Watch(a.workspace)
	if err != nil {
		return nil, err
	}
	a.watcher = w
	return w, nil
}

// Shutdown stops the watcher, writes pending content and the tab state,
// and releases every document. Later calls return ErrShutdown.
func (a *Application) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return ErrShutdown
	}
	a.shutdown = true
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()

	var errs []error
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.stateSaver.Cancel()
	a.sessions.FlushAll()
	if err := a.SaveSessionState(ctx); err != nil {
		errs = append(errs, err)
	}

	ids := a.sessions.Order()
	for _, id := range ids {
		a.unsubscribe(id)
	}
	a.popup.Dismiss()
	a.sessions.Dispose()
	a.logger.Debug("shutdown complete")
	return errors.Join(errs...)
}

// Sessions returns the document arena.
func (a *Application) Sessions() *Sessions {
	return a.sessions
}
