// Package validation decides whether a merged candidate résumé may become a deliverable.
package validation

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Tolerance is the asymmetric bullet-count band around the reference count
type Tolerance struct {
	MaxDrop int `json:"max_drop" yaml:"max_drop" validate:"gte=0"`
	MaxAdd  int `json:"max_add" yaml:"max_add" validate:"gte=0"`
}

// DefaultTolerance allows two bullets to be dropped and one to be added
var DefaultTolerance = Tolerance{MaxDrop: 2, MaxAdd: 1}

// Band returns the inclusive bullet range accepted for a reference count
func (t Tolerance) Band(reference int) (lo, hi int) {
	return reference - t.MaxDrop, reference + t.MaxAdd
}

// Check rejects negative bounds
func (t Tolerance) Check() error {
	if t.MaxDrop < 0 || t.MaxAdd < 0 {
		return &Error{Message: fmt.Sprintf("bullet tolerance must be non-negative, got max_drop=%d max_add=%d", t.MaxDrop, t.MaxAdd)}
	}
	return nil
}

// Validate runs the structural checks in order and stops at the first failure:
// shape, delimiter balance, section markers, entry identifiers, bullet count.
// It never mutates or repairs the candidate.
func Validate(ref *document.Reference, candidate string, tol Tolerance) types.Verdict {
	if v := checkShape(candidate); !v.Accepted {
		return v
	}
	if v := checkBalance(candidate); !v.Accepted {
		return v
	}
	if v := checkSections(ref, candidate); !v.Accepted {
		return v
	}
	if v := checkEntries(ref, candidate); !v.Accepted {
		return v
	}
	return checkBullets(ref, candidate, tol)
}

func checkShape(candidate string) types.Verdict {
	if strings.TrimSpace(candidate) == "" {
		return types.Reject(types.KindEmptyOrUnshaped, "empty output")
	}

	var missing []string
	for _, token := range []string{document.OpenMarker, document.BodyStartMarker, document.CloseMarker} {
		if !strings.Contains(candidate, token) {
			missing = append(missing, token)
		}
	}
	if len(missing) > 0 {
		return types.Reject(types.KindEmptyOrUnshaped, "missing tokens: %s", strings.Join(missing, ", "))
	}
	return types.Accept()
}

// checkBalance ignores square brackets: interval notation like [0, 1) is legal text
func checkBalance(candidate string) types.Verdict {
	if open, closed := document.CountBraces(candidate); open != closed {
		return types.Reject(types.KindUnbalancedDelimiters, "unbalanced braces: %d open, %d close", open, closed)
	}
	if msg := document.EnvironmentMismatch(candidate); msg != "" {
		return types.Reject(types.KindUnbalancedDelimiters, "unbalanced environments: %s", msg)
	}
	return types.Accept()
}

// checkSections ignores commented-out markers and typographic differences
func checkSections(ref *document.Reference, candidate string) types.Verdict {
	refBody := ref.SearchableBody()
	body := document.Searchable(bodyOf(candidate))

	var missing []string
	for _, marker := range ref.SectionMarkers() {
		if !strings.Contains(refBody, marker) {
			return types.Reject(types.KindPipelineConfiguration, "section marker %s is not present in the reference", marker)
		}
		if !strings.Contains(body, marker) {
			missing = append(missing, marker)
		}
	}
	if len(missing) > 0 {
		return types.Reject(types.KindMissingSection, "missing %s", strings.Join(missing, ", "))
	}
	return types.Accept()
}

func checkEntries(ref *document.Reference, candidate string) types.Verdict {
	var fabricated []string
	for _, id := range document.EntryIdentifiers(document.NormalizeUnicode(bodyOf(candidate))) {
		if !ref.HasEntry(id) {
			fabricated = append(fabricated, id)
		}
	}
	if len(fabricated) > 0 {
		return types.Reject(types.KindFabricatedEntry, "entries not in reference: %s", strings.Join(fabricated, "; "))
	}
	return types.Accept()
}

func checkBullets(ref *document.Reference, candidate string, tol Tolerance) types.Verdict {
	got := document.CountBullets(bodyOf(candidate))
	want := ref.BulletCount()
	lo, hi := tol.Band(want)
	if got < lo || got > hi {
		return types.Reject(types.KindBulletCountDrift,
			"candidate has %d bullets, reference has %d (allowed %d..%d)", got, want, lo, hi)
	}
	return types.Accept()
}

// bodyOf narrows the candidate to its body so preamble commands are never counted
func bodyOf(candidate string) string {
	start := strings.Index(candidate, document.BodyStartMarker)
	if start < 0 {
		return candidate
	}
	return candidate[start+len(document.BodyStartMarker):]
}
