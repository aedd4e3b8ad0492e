package reducer

import (
	"errors"
	"fmt"
)

// PreconditionError is the panic value raised when a composed reducer is
// invoked in a state it cannot handle.
//
// These are programming errors, not recoverable conditions. The error is
// structured so that a recover() in a test or a crash reporter can inspect
// what went wrong.
type PreconditionError struct {
	// Code identifies the violated precondition.
	Code PreconditionCode

	// Action is the textual rendering of the offending action.
	Action string

	// Index is the requested element position.
	Index int

	// Len is the collection length at the time of the call.
	Len int
}

// PreconditionCode categorizes precondition violations.
type PreconditionCode string

const (
	// ErrCodeIndexOutOfRange indicates an indexed action addressed an
	// element that no longer exists.
	ErrCodeIndexOutOfRange PreconditionCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: action %q addressed index %d, valid range is [0, %d)",
		e.Code, e.Action, e.Index, e.Len)
}

// NewIndexOutOfRangeError creates a PreconditionError for an indexed action
// outside the bounds of its collection.
func NewIndexOutOfRangeError(action string, index, length int) *PreconditionError {
	return &PreconditionError{
		Code:   ErrCodeIndexOutOfRange,
		Action: action,
		Index:  index,
		Len:    length,
	}
}

// IsIndexOutOfRange returns true if err is an index precondition violation.
// Uses errors.As to handle wrapped errors.
func IsIndexOutOfRange(err error) bool {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeIndexOutOfRange
	}
	return false
}
