package validation

import "fmt"

// Error means the gate itself is misconfigured, e.g. a negative tolerance. Candidate failures
// are verdicts, never errors.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}
