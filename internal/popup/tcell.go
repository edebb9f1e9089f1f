package popup

import "github.com/gdamore/tcell/v2"

// KeyFromEvent maps a terminal key event to a popup key.
func KeyFromEvent(ev *tcell.EventKey) Key {
	if ev == nil {
		return KeyOther
	}
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyTab:
		return KeyTab
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyBackspace
	case tcell.KeyDelete:
		return KeyDelete
	default:
		return KeyOther
	}
}
