// Package popup implements the suggestion popup as an explicit state
// machine. Transitions are pure functions; Controller holds the current
// state for a host that renders it.
package popup

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/scriptsense/internal/symbol"
	"github.com/dshills/scriptsense/internal/textmodel"
)

// Anchor is where the popup is drawn: the start of the word being
// completed, as a line, a byte column, and a display cell offset.
type Anchor struct {
	Line   int
	Column int
	Cell   int
}

// AnchorFor computes the anchor of word on line lineNo with content line.
func AnchorFor(lineNo int, line string, word textmodel.Word) Anchor {
	col := word.StartColumn
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	return Anchor{
		Line:   lineNo,
		Column: col,
		Cell:   uniseg.StringWidth(line[:col-1]),
	}
}

// State is either hidden or visible with a non-empty suggestion list.
// Word is the prefix being completed; Target is the whole identifier at
// the cursor that an accepted suggestion replaces.
type State struct {
	Visible     bool
	Suggestions []symbol.Symbol
	Selected    int
	Anchor      Anchor
	Word        textmodel.Word
	Target      textmodel.Word
}

// Hidden returns the hidden state.
func Hidden() State {
	return State{}
}

// Current returns the selected suggestion.
func (s State) Current() (symbol.Symbol, bool) {
	if !s.Visible || s.Selected < 0 || s.Selected >= len(s.Suggestions) {
		return symbol.Symbol{}, false
	}
	return s.Suggestions[s.Selected], true
}

// Acceptance is the edit produced by accepting a suggestion: Symbol's
// label replaces Range.
type Acceptance struct {
	Symbol symbol.Symbol
	Range  textmodel.Range
}

// Outcome reports the side effects of a key.
type Outcome struct {
	// Intercepted is true when the key must not reach the buffer.
	Intercepted bool
	// Accepted is set when a suggestion was accepted.
	Accepted *Acceptance
}

// Refresh shows ranked suggestions for word anchored at anchor. target is
// the identifier replaced on accept; an empty target means word. The
// selection is kept when the word is unchanged, otherwise it resets to the
// first row. An empty list hides the popup.
func Refresh(prev State, suggestions []symbol.Symbol, word, target textmodel.Word, anchor Anchor) State {
	if len(suggestions) == 0 {
		return Hidden()
	}
	if target.Text == "" {
		target = word
	}
	selected := 0
	if prev.Visible && prev.Word.Text == word.Text && prev.Selected < len(suggestions) {
		selected = prev.Selected
	}
	return State{
		Visible:     true,
		Suggestions: suggestions,
		Selected:    selected,
		Anchor:      anchor,
		Word:        word,
		Target:      target,
	}
}

// CursorMoved keeps the popup only if the word at the new cursor is the
// one being completed and still long enough to complete.
func CursorMoved(s State, word textmodel.Word) State {
	if !s.Visible || word.Text != s.Word.Text || len(word.Text) < 2 {
		return Hidden()
	}
	return s
}

// HandleKey applies a key to a visible popup. accept is the configured
// accept key; the other of Tab and Enter is swallowed while visible.
func HandleKey(s State, k Key, accept Key) (State, Outcome) {
	n := len(s.Suggestions)
	if !s.Visible || n == 0 {
		return s, Outcome{}
	}

	switch k {
	case KeyDown:
		s.Selected = (s.Selected + 1) % n
		return s, Outcome{Intercepted: true}
	case KeyUp:
		s.Selected = (s.Selected - 1 + n) % n
		return s, Outcome{Intercepted: true}
	case KeyEscape:
		return Hidden(), Outcome{Intercepted: true}
	case KeyBackspace, KeyDelete:
		return Hidden(), Outcome{}
	}

	if k == accept && ValidAcceptKey(k) {
		next, acc := Accept(s)
		return next, Outcome{Intercepted: true, Accepted: acc}
	}
	if k != KeyOther && k == alternate(accept) {
		return s, Outcome{Intercepted: true}
	}
	return s, Outcome{}
}

// Select moves the selection to i. Out-of-range indexes are ignored.
func Select(s State, i int) State {
	if !s.Visible || i < 0 || i >= len(s.Suggestions) {
		return s
	}
	s.Selected = i
	return s
}

// Accept hides the popup and returns the selected suggestion with the
// range of the identifier it replaces.
func Accept(s State) (State, *Acceptance) {
	sym, ok := s.Current()
	if !ok {
		return Hidden(), nil
	}
	return Hidden(), &Acceptance{
		Symbol: sym,
		Range:  textmodel.NewRange(s.Anchor.Line, s.Target.StartColumn, s.Anchor.Line, s.Target.EndColumn),
	}
}

// Dismiss hides the popup.
func Dismiss(State) State {
	return Hidden()
}
