// Package merge splices the verified reference preamble onto a model-generated body.
package merge

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
)

// Merge discards whatever preamble the candidate carries and returns the reference preamble,
// the candidate body, and the closing marker. The body is the slice between the candidate's own
// body-start and closing markers when both are present, otherwise the whole sanitized candidate.
func Merge(ref *document.Reference, sanitized string) string {
	body := Body(sanitized)

	var b strings.Builder
	b.Grow(len(ref.Preamble()) + len(body) + len(document.CloseMarker))
	b.WriteString(ref.Preamble())
	b.WriteString(body)
	b.WriteString(document.CloseMarker)
	return b.String()
}

// Body extracts the candidate body used by Merge
func Body(sanitized string) string {
	start := strings.Index(sanitized, document.BodyStartMarker)
	end := strings.LastIndex(sanitized, document.CloseMarker)
	if start < 0 || end < 0 {
		return sanitized
	}
	start += len(document.BodyStartMarker)
	if end < start {
		return sanitized
	}
	return sanitized[start:end]
}
