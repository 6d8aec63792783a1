package sanitize

import "fmt"

// MalformedDocumentError means the model ignored the output contract entirely.
// It is never retried.
type MalformedDocumentError struct {
	Message string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %s", e.Message)
}
