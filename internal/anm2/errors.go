package anm2

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrInvalidArgument indicates a bad or stale ID, or a missing required input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidFormat indicates a file lacks the expected embedded metadata.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnexpected indicates an internal invariant was violated.
	ErrUnexpected = errors.New("unexpected state")

	// ErrNoPersistence indicates load/save was requested without a persistence backend.
	ErrNoPersistence = errors.New("no persistence configured")
)

// OperationError records the document operation and entity that failed.
type OperationError struct {
	Op  string // Operation name (e.g., "item_move")
	ID  ID     // Entity the operation addressed, 0 if none
	Err error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op string, id ID, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, ID: id, Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
