package audit

import (
	"errors"
	"fmt"
)

// ErrPartitionNotFound indicates the requested date has no partition file.
// A missing partition is a distinct condition, not a verification failure.
var ErrPartitionNotFound = errors.New("audit: partition not found")

// WriteError indicates a record could not be appended to its partition.
// The chain pointer is not advanced when a write fails.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	msg := fmt.Sprintf("audit write error [path=%s]: %s", e.Path, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// NewWriteError creates a new WriteError.
func NewWriteError(path, message string, cause error) *WriteError {
	return &WriteError{Path: path, Message: message, Cause: cause}
}
