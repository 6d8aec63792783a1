package repair

import (
	"context"
	"errors"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/merge"
	"github.com/jonathan/resume-tailor/internal/sanitize"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// MaxGenerations bounds generation calls per record: the first attempt plus one corrective retry
const MaxGenerations = 2

// State is the position of a record in the repair loop
type State int

const (
	// FirstAttempt is the uncorrected generation
	FirstAttempt State = iota
	// Retried is the single corrective generation after bullet-count drift
	Retried
)

func (s State) String() string {
	switch s {
	case FirstAttempt:
		return "first_attempt"
	case Retried:
		return "retried"
	default:
		return "unknown"
	}
}

// GenerationRequest is everything the generation collaborator needs for one call
type GenerationRequest struct {
	Reference *document.Reference
	Job       types.JobRecord
	// Corrective asks for exact bullet parity with the reference
	Corrective bool
	// Feedback quotes the verdict detail that triggered the corrective call
	Feedback string
}

// Generation is the untrusted output of one generation call
type Generation struct {
	Text            string
	Model           string
	FitScore        *float64
	KeywordCoverage *float64
	TopKeywords     []string
	MissingKeywords []string
}

// Generator produces candidate documents. Implementations own their own transport retries.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (Generation, error)
}

// Result is the terminal outcome for one record: either accepted with a tailored document or
// rejected with a verdict. Generation carries the last generation's metadata.
type Result struct {
	Tailored   *types.TailoredDocument
	Verdict    types.Verdict
	State      State
	Attempts   int
	Generation Generation
}

// Accepted reports whether the record produced a deliverable document
func (r Result) Accepted() bool {
	return r.Verdict.Accepted && r.Tailored != nil
}

// Gate runs sanitize, merge and validate over raw model text. On acceptance it returns the tailored
// document; a sanitizer failure becomes a MalformedDocument verdict.
func Gate(ref *document.Reference, raw string, tol validation.Tolerance) (*types.TailoredDocument, types.Verdict) {
	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		var malformed *sanitize.MalformedDocumentError
		if errors.As(err, &malformed) {
			return nil, types.Reject(types.KindMalformedDocument, "%s", malformed.Message)
		}
		return nil, types.Reject(types.KindMalformedDocument, "%v", err)
	}

	merged := merge.Merge(ref, clean)
	verdict := validation.Validate(ref, merged, tol)
	if !verdict.Accepted {
		return nil, verdict
	}
	return types.NewTailoredDocument(merged, len(ref.Preamble()), document.CountBullets(merged[len(ref.Preamble()):])), verdict
}

// next is the loop's transition function: it reports the following state, or done when the
// verdict is terminal for the current state
func next(state State, verdict types.Verdict) (State, bool) {
	if verdict.Accepted || state == Retried || !verdict.Kind.Recoverable() {
		return state, true
	}
	return Retried, false
}

// Run drives one record through at most MaxGenerations generation calls. A returned error is a
// collaborator failure; every document-level outcome is reported through Result.Verdict.
func Run(ctx context.Context, gen Generator, ref *document.Reference, job types.JobRecord, tol validation.Tolerance) (Result, error) {
	if ref == nil {
		return Result{}, &Error{Message: "reference document is required"}
	}

	res := Result{State: FirstAttempt}
	req := GenerationRequest{Reference: ref, Job: job}

	for res.Attempts < MaxGenerations {
		out, err := gen.Generate(ctx, req)
		res.Attempts++
		if err != nil {
			return res, &GenerationError{Attempt: res.Attempts, Cause: err}
		}
		res.Generation = out
		res.Tailored, res.Verdict = Gate(ref, out.Text, tol)

		state, done := next(res.State, res.Verdict)
		if done {
			return res, nil
		}
		res.State = state
		req.Corrective = true
		req.Feedback = res.Verdict.Detail
	}
	return res, nil
}
