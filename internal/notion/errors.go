// Package notion reads queued job records from a Notion database and writes run results back.
package notion

import "fmt"

// Error represents a client-side failure talking to Notion
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("notion: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("notion: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
