package popup

import "strings"

// Key is an input key as seen by the popup.
type Key int

// Keys the popup reacts to. Everything else is KeyOther.
const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyTab
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
)

var keyNames = map[Key]string{
	KeyOther:     "Other",
	KeyUp:        "ArrowUp",
	KeyDown:      "ArrowDown",
	KeyTab:       "Tab",
	KeyEnter:     "Enter",
	KeyEscape:    "Escape",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
}

// String returns the key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKey parses a key name such as "Tab" or "Enter", ignoring case.
func ParseKey(name string) (Key, bool) {
	name = strings.TrimSpace(name)
	for k, n := range keyNames {
		if k != KeyOther && strings.EqualFold(n, name) {
			return k, true
		}
	}
	switch strings.ToLower(name) {
	case "up":
		return KeyUp, true
	case "down":
		return KeyDown, true
	case "esc":
		return KeyEscape, true
	case "return":
		return KeyEnter, true
	}
	return KeyOther, false
}

// ValidAcceptKey reports whether k may be configured as the accept key.
func ValidAcceptKey(k Key) bool {
	return k == KeyTab || k == KeyEnter
}

// alternate returns the accept-capable key that is not k.
func alternate(k Key) Key {
	switch k {
	case KeyTab:
		return KeyEnter
	case KeyEnter:
		return KeyTab
	}
	return KeyOther
}
