// Package rendering materializes tailored LaTeX résumés: reserved-character escaping and artifact files.
package rendering

import "fmt"

// RenderError means a tailored document could not be written to disk. Path is empty when the
// failure happened before a destination was known.
type RenderError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", msg, e.Cause)
	}
	return "render error: " + msg
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
