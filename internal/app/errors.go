package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrDocumentNotFound indicates a document id that is not open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrShutdown indicates the application has been shut down.
	ErrShutdown = errors.New("application shut down")
)

// InitError represents a failure while building a component.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// NotifyLevel is the severity of a host notification.
type NotifyLevel int

const (
	// NotifyInfo is an informational notice.
	NotifyInfo NotifyLevel = iota
	// NotifyWarning is a recoverable problem.
	NotifyWarning
	// NotifyError is a failed operation whose in-memory state was kept.
	NotifyError
)

// String returns the level name.
func (l NotifyLevel) String() string {
	switch l {
	case NotifyInfo:
		return "info"
	case NotifyWarning:
		return "warning"
	case NotifyError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification reports a non-fatal problem to the host.
type Notification struct {
	Level      NotifyLevel
	Source     string // "persistence", "catalog" or "watcher"
	DocumentID string
	Message    string
	Err        error
}

func (n Notification) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %s: %v", n.Source, n.Message, n.Err)
	}
	return fmt.Sprintf("%s: %s", n.Source, n.Message)
}
