// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// FailureKind names the reason a candidate document was rejected
type FailureKind string

const (
	// KindNone is the zero kind carried by accepted verdicts
	KindNone FailureKind = ""
	// KindMalformedDocument means the model ignored the output contract (no start/end marker)
	KindMalformedDocument FailureKind = "MalformedDocument"
	// KindEmptyOrUnshaped means the candidate is empty or lacks a mandatory token
	KindEmptyOrUnshaped FailureKind = "EmptyOrUnshaped"
	// KindUnbalancedDelimiters means braces or environments do not pair up, usually truncation
	KindUnbalancedDelimiters FailureKind = "UnbalancedDelimiters"
	// KindMissingSection means a reference section header is gone
	KindMissingSection FailureKind = "MissingSection"
	// KindFabricatedEntry means the candidate introduced a top-level entry the reference does not have
	KindFabricatedEntry FailureKind = "FabricatedEntry"
	// KindBulletCountDrift means the bullet count left the tolerance band
	KindBulletCountDrift FailureKind = "BulletCountDrift"
	// KindPipelineConfiguration means the reference itself fails a check
	KindPipelineConfiguration FailureKind = "PipelineConfigurationError"
)

// Recoverable reports whether a failure of this kind may be retried once
func (k FailureKind) Recoverable() bool {
	return k == KindBulletCountDrift
}

// Fatal reports whether a failure of this kind must abort the whole run
func (k FailureKind) Fatal() bool {
	return k == KindPipelineConfiguration
}

// Verdict is the outcome of one validation pass
type Verdict struct {
	Accepted bool        `json:"accepted"`
	Kind     FailureKind `json:"failure_kind,omitempty"`
	Detail   string      `json:"detail"`
}

// Accept returns an accepting verdict
func Accept() Verdict {
	return Verdict{Accepted: true, Detail: "OK"}
}

// Reject returns a rejecting verdict with a formatted detail
func Reject(kind FailureKind, format string, args ...any) Verdict {
	return Verdict{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// String renders the verdict the way it is written back to the record store
func (v Verdict) String() string {
	if v.Accepted {
		return "OK"
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// TailoredDocument is an accepted candidate: the reference preamble plus the validated body.
// It is never mutated after creation.
type TailoredDocument struct {
	text        string
	preambleLen int
	bullets     int
}

// NewTailoredDocument wraps accepted text whose first preambleLen bytes are the reference preamble
func NewTailoredDocument(text string, preambleLen, bullets int) *TailoredDocument {
	return &TailoredDocument{text: text, preambleLen: preambleLen, bullets: bullets}
}

// Text returns the full serialized document
func (d *TailoredDocument) Text() string { return d.text }

// Preamble returns the spliced reference preamble
func (d *TailoredDocument) Preamble() string { return d.text[:d.preambleLen] }

// Body returns everything after the preamble
func (d *TailoredDocument) Body() string { return d.text[d.preambleLen:] }

// BulletCount returns the number of bullets counted during validation
func (d *TailoredDocument) BulletCount() int { return d.bullets }
