package journal

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of a journal error.
type ErrorCode string

const (
	// ErrCodeSessionNotFound indicates a read of a session that was never started.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// ErrCodeUnencodableState indicates a state value that has no canonical
	// JSON form (for example one containing floats or channels).
	ErrCodeUnencodableState ErrorCode = "UNENCODABLE_STATE"
)

// Error is a journal error with a machine-readable code.
type Error struct {
	Code      ErrorCode
	SessionID string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: session %q: %v", e.Code, e.SessionID, e.Err)
	}
	return fmt.Sprintf("%s: session %q", e.Code, e.SessionID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSessionNotFound reports whether err is a SESSION_NOT_FOUND journal error.
func IsSessionNotFound(err error) bool {
	var je *Error
	return errors.As(err, &je) && je.Code == ErrCodeSessionNotFound
}

// IsUnencodableState reports whether err is an UNENCODABLE_STATE journal error.
func IsUnencodableState(err error) bool {
	var je *Error
	return errors.As(err, &je) && je.Code == ErrCodeUnencodableState
}
