package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/scriptsense/internal/popup"
	"github.com/dshills/scriptsense/internal/session"
	"github.com/dshills/scriptsense/internal/textmodel"
)

// subscribe attaches the content pipeline to the model of doc.
func (a *Application) subscribe(doc session.Document, model *textmodel.Model) {
	if _, ok := a.subscriptions[doc.ID]; ok {
		return
	}
	id := doc.ID
	a.subscriptions[id] = model.OnContentChanged(func(textmodel.ChangeEvent) {
		a.handleContent(id)
	})
}

func (a *Application) unsubscribe(id string) {
	if remove, ok := a.subscriptions[id]; ok {
		remove()
		delete(a.subscriptions, id)
	}
}

// handleContent runs after every change of a document's content:
// persist, then markers, then suggestions for the active document.
func (a *Application) handleContent(id string) {
	if !a.external {
		a.sessions.Persist(id)
	}
	a.publishMarkers(id)

	if id != a.sessions.ActiveID() || a.accepting {
		return
	}
	a.refreshSuggestions()
}

func (a *Application) publishMarkers(id string) {
	doc, ok := a.sessions.Document(id)
	if !ok {
		return
	}
	a.markers.Publish(id, doc.Language, doc.Content)
}

// refreshSuggestions recomputes the popup for the cursor of the active
// document.
func (a *Application) refreshSuggestions() {
	if !a.popup.Enabled() {
		return
	}
	model := a.editor.Model()
	if model == nil || model.IsDisposed() {
		a.popup.Dismiss()
		return
	}

	pos := a.editor.Cursor()
	suggestions := a.ranker.Suggestions(model.Value(), pos, a.cfg.Intellisense.MaxSuggestions)
	word := model.WordUntil(pos)
	target, ok := model.WordAt(pos)
	if !ok {
		target = word
	}
	anchor := popup.AnchorFor(pos.Line, model.LineContent(pos.Line), word)
	a.popup.Refresh(suggestions, word, target, anchor)
}

// handleCursor keeps the popup across explicit moves only while the word
// under the cursor is unchanged. Moves caused by edits are handled by the
// content pipeline; restored views always hide it.
func (a *Application) handleCursor(ev textmodel.CursorEvent) {
	switch ev.Reason {
	case textmodel.CursorExplicit:
		if !a.popup.Visible() {
			return
		}
		model := a.editor.Model()
		if model == nil {
			a.popup.Dismiss()
			return
		}
		a.popup.CursorMoved(model.WordUntil(ev.Position))
	case textmodel.CursorRestore:
		a.popup.Dismiss()
	}
}

// SuggestionState returns the popup state.
func (a *Application) SuggestionState() popup.State {
	return a.popup.State()
}

// SuggestionWindow returns the half-open range of popup rows in view.
func (a *Application) SuggestionWindow() (first, last int) {
	return a.popup.Window()
}

// SelectSuggestion moves the popup selection to index.
func (a *Application) SelectSuggestion(index int) {
	a.popup.Select(index)
}

// AcceptSuggestion replaces the word being completed with the selected
// suggestion. It reports whether a suggestion was applied.
func (a *Application) AcceptSuggestion() bool {
	return a.apply(a.popup.Accept())
}

// DismissSuggestions hides the popup.
func (a *Application) DismissSuggestions() {
	a.popup.Dismiss()
}

// HandleKey feeds a key to the popup. It reports whether the key was
// consumed and must not reach the buffer.
func (a *Application) HandleKey(k popup.Key) bool {
	out := a.popup.HandleKey(k)
	if out.Accepted != nil {
		a.apply(out.Accepted)
	}
	return out.Intercepted
}

// HandleKeyEvent feeds a terminal key event to the popup. It reports
// whether the key was consumed and must not reach the buffer.
func (a *Application) HandleKeyEvent(ev *tcell.EventKey) bool {
	return a.HandleKey(popup.KeyFromEvent(ev))
}

// Type inserts text at the cursor of the active document.
func (a *Application) Type(text string) {
	a.editor.Type(text)
}

// Backspace deletes before the cursor of the active document.
func (a *Application) Backspace() {
	a.editor.Backspace()
}

// MoveCursor moves the cursor as a user navigation.
func (a *Application) MoveCursor(p textmodel.Position) {
	a.editor.SetCursor(p, textmodel.CursorExplicit)
}

func (a *Application) apply(acc *popup.Acceptance) bool {
	if acc == nil || a.editor.Model() == nil {
		return false
	}
	a.accepting = true
	defer func() { a.accepting = false }()
	a.editor.ExecuteEdit(acc.Range, acc.Symbol.Label)
	return true
}

// SetIntellisenseEnabled turns suggestions on or off.
func (a *Application) SetIntellisenseEnabled(enabled bool) {
	a.popup.SetEnabled(enabled)
}

// SetAcceptKey changes the key that accepts a suggestion. Only Tab and
// Enter are allowed.
func (a *Application) SetAcceptKey(k popup.Key) bool {
	if !popup.ValidAcceptKey(k) {
		return false
	}
	a.popup.SetAcceptKey(k)
	return true
}

// SetMarkersEnabled turns markers on or off. Turning them on analyzes
// every open document again.
func (a *Application) SetMarkersEnabled(enabled bool) {
	a.markers.SetEnabled(enabled)
	if enabled {
		for _, id := range a.sessions.Order() {
			a.publishMarkers(id)
		}
	}
}
