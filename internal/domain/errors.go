package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError rejects a malformed record before persistence.
// Nothing is partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// StorageError surfaces an underlying persistence failure (quota,
// serialization, unavailable backend). Callers report it to the user;
// it never crashes the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidStateError rejects a transition to an unrecognized pipeline
// stage. The record is left unmodified.
type InvalidStateError struct {
	Stage Stage
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid pipeline stage %q", string(e.Stage))
}
