package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// Error represents a failed publish of one artifact
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("storage: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
