// Package compile turns a tailored .tex file into a PDF with an external LaTeX engine.
package compile

import "fmt"

// Error represents a failed compilation. Line and Snippet are set when the engine log
// names a source line.
type Error struct {
	Message   string
	Line      int
	Snippet   string
	LogOutput string
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
