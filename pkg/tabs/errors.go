package tabs

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable is wrapped by backends when a browser call
	// itself fails.
	ErrCollaboratorUnavailable = errors.New("browser unavailable")

	// ErrPermissionUnavailable means the bookmarks capability is missing.
	// It is distinct from an empty bookmark tree.
	ErrPermissionUnavailable = errors.New("bookmarks permission is missing")

	// ErrNotFound means a probed window or tab no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedScope is returned for scope strings other than
	// "current" and "all".
	ErrUnsupportedScope = errors.New("unsupported scope")

	// ErrNothingToUndo is returned by UndoLastClose when no batch is pending.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrOperationInProgress is returned when a mutating operation is
	// started while another one is still running on the same session.
	ErrOperationInProgress = errors.New("another operation is in progress")
)

// OperationError reports a failed session operation as a whole.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}
