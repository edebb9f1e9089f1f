package popup

import (
	"github.com/dshills/scriptsense/internal/symbol"
	"github.com/dshills/scriptsense/internal/textmodel"
)

// DefaultRows is the number of rows visible at once.
const DefaultRows = 8

// Controller owns the popup state for one editor. It is not safe for
// concurrent use; the host drives it from its event loop.
type Controller struct {
	state     State
	acceptKey Key
	enabled   bool
	rows      int
	top       int
	onChange  func(State)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithAcceptKey sets the accept key. Only Tab and Enter are accepted.
func WithAcceptKey(k Key) ControllerOption {
	return func(c *Controller) {
		if ValidAcceptKey(k) {
			c.acceptKey = k
		}
	}
}

// WithRows sets how many rows fit in the popup.
func WithRows(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.rows = n
		}
	}
}

// WithChangeHandler sets the callback invoked on every state change.
func WithChangeHandler(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController creates an enabled controller accepting with Tab.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		acceptKey: KeyTab,
		enabled:   true,
		rows:      DefaultRows,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Visible reports whether the popup is shown.
func (c *Controller) Visible() bool {
	return c.state.Visible
}

// AcceptKey returns the configured accept key.
func (c *Controller) AcceptKey() Key {
	return c.acceptKey
}

// SetAcceptKey changes the accept key. Keys other than Tab and Enter are
// ignored.
func (c *Controller) SetAcceptKey(k Key) {
	if ValidAcceptKey(k) {
		c.acceptKey = k
	}
}

// Enabled reports whether suggestions are shown at all.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// SetEnabled turns the popup on or off. Disabling hides it.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.set(Hidden())
	}
}

// Refresh shows suggestions for word, replacing target on accept, or
// hides the popup if there are none or the controller is disabled.
func (c *Controller) Refresh(suggestions []symbol.Symbol, word, target textmodel.Word, anchor Anchor) {
	if !c.enabled {
		c.set(Hidden())
		return
	}
	c.set(Refresh(c.state, suggestions, word, target, anchor))
}

// CursorMoved reacts to an explicit cursor move.
func (c *Controller) CursorMoved(word textmodel.Word) {
	c.set(CursorMoved(c.state, word))
}

// HandleKey applies k and reports whether it was intercepted and whether
// a suggestion was accepted.
func (c *Controller) HandleKey(k Key) Outcome {
	next, out := HandleKey(c.state, k, c.acceptKey)
	c.set(next)
	return out
}

// Select moves the selection to i.
func (c *Controller) Select(i int) {
	c.set(Select(c.state, i))
}

// Accept accepts the selected suggestion, if any.
func (c *Controller) Accept() *Acceptance {
	next, acc := Accept(c.state)
	c.set(next)
	return acc
}

// Dismiss hides the popup.
func (c *Controller) Dismiss() {
	c.set(Dismiss(c.state))
}

// ScrollTarget returns the row that must be in view, or -1 when hidden.
func (c *Controller) ScrollTarget() int {
	if !c.state.Visible {
		return -1
	}
	return c.state.Selected
}

// Window returns the half-open range of rows currently in view. The
// window moves the least distance needed to keep the selection visible.
func (c *Controller) Window() (first, last int) {
	if !c.state.Visible {
		return 0, 0
	}
	n := len(c.state.Suggestions)
	last = c.top + c.rows
	if last > n {
		last = n
	}
	return c.top, last
}

func (c *Controller) set(next State) {
	prev := c.state
	c.state = next
	c.scrollIntoView()

	if !prev.Visible && !next.Visible {
		return
	}
	if c.onChange != nil {
		c.onChange(next)
	}
}

func (c *Controller) scrollIntoView() {
	if !c.state.Visible {
		c.top = 0
		return
	}
	sel := c.state.Selected
	switch {
	case sel < c.top:
		c.top = sel
	case sel >= c.top+c.rows:
		c.top = sel - c.rows + 1
	}
	if maxTop := len(c.state.Suggestions) - c.rows; c.top > maxTop {
		c.top = max(maxTop, 0)
	}
}
