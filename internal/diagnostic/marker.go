package diagnostic

import (
	"fmt"

	"github.com/dshills/scriptsense/internal/textmodel"
)

// Severity of a marker.
type Severity int

const (
	// SeverityError marks text that does not parse.
	SeverityError Severity = iota + 1
	// SeverityWarning marks a style issue.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Source is the tag carried by every marker this package produces.
const Source = "Lua"

// Owner identifies this package's marker set in a host.
const Owner = "lua-diagnostics"

// Marker is a positioned diagnostic.
type Marker struct {
	Severity Severity        `json:"severity"`
	Message  string          `json:"message"`
	Range    textmodel.Range `json:"range"`
	Source   string          `json:"source"`
}

// String formats the marker as "line:col: severity: message".
func (m Marker) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", m.Range.Start.Line, m.Range.Start.Column, m.Severity, m.Message)
}

// Counts returns the number of errors and warnings in markers.
func Counts(markers []Marker) (errors, warnings int) {
	for _, m := range markers {
		switch m.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}
