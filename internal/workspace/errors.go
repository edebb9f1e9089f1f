package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing indicates a rename whose source file does not exist.
	ErrSourceMissing = errors.New("source file does not exist")

	// ErrInvalidState indicates a state.json that cannot be decoded.
	ErrInvalidState = errors.New("invalid session state")

	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")
)

// OperationError describes a failed storage operation.
type OperationError struct {
	Op        string
	Workspace string
	Target    string
	Err       error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("workspace %s: %s %s: %v", e.Workspace, e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("workspace %s: %s: %v", e.Workspace, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, ws, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Workspace: ws, Target: target, Err: err}
}
