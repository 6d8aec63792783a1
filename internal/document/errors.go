package document

import "fmt"

// ConfigurationError means the reference template itself is invalid.
// It is fatal to a run, never to a single record.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
