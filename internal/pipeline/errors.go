// Package pipeline processes queued job records end to end: generate, gate, compile, publish
// and write the outcome back to the record store.
package pipeline

import "fmt"

// Labels prefixed to collaborator failures in record write-backs, alongside the gate's
// failure kinds
const (
	LabelGeneration = "GenerationError"
	LabelRender     = "RenderError"
	LabelCompile    = "CompileError"
	LabelUpload     = "UploadError"
)

// ReasonEmptyJD marks records skipped because they have no job description
const ReasonEmptyJD = "empty_jd"

// EmptyJDMessage is written back to records without a usable job description
const EmptyJDMessage = "Job Description is empty or unreadable by API"

// Error represents a failure that aborts a whole run
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
