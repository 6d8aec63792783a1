// Package repair runs the generate, sanitize, merge, validate chain with one corrective retry.
package repair

import "fmt"

// Error means the loop was called without what it needs to run
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("repair error: %s", e.Message)
}

// GenerationError is a failed call to the generation collaborator. Attempt counts from 1.
type GenerationError struct {
	Attempt int
	Cause   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on attempt %d: %v", e.Attempt, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
