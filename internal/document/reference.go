package document

import (
	"fmt"
	"os"
	"strings"
)

// Reference is the immutable master résumé every candidate is checked against
type Reference struct {
	text             string
	preamble         string
	body             string
	sectionMarkers   []string
	entryIdentifiers map[string]bool
	entryList        []string
	bulletCount      int
}

// Options tunes how a reference is interpreted
type Options struct {
	// RequiredSections overrides the section markers discovered in the reference.
	// Each one must still appear verbatim in the reference.
	RequiredSections []string
}

// NewReference parses and self-checks a reference document. Any failure here is a
// *ConfigurationError: the template itself is broken, not a candidate.
func NewReference(text string, opts Options) (*Reference, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil, &ConfigurationError{Message: "reference document is empty"}
	}

	for _, token := range []string{OpenMarker, BodyStartMarker, CloseMarker} {
		if !strings.Contains(text, token) {
			return nil, &ConfigurationError{Message: fmt.Sprintf("reference is missing mandatory token %s", token)}
		}
	}

	if open, closed := CountBraces(text); open != closed {
		return nil, &ConfigurationError{Message: fmt.Sprintf("reference has unbalanced braces: %d open, %d close", open, closed)}
	}
	if msg := EnvironmentMismatch(text); msg != "" {
		return nil, &ConfigurationError{Message: "reference has unbalanced environments: " + msg}
	}

	start := strings.Index(text, BodyStartMarker) + len(BodyStartMarker)
	end := strings.LastIndex(text, CloseMarker)
	if end < start {
		return nil, &ConfigurationError{Message: "reference closes the document before its body starts"}
	}

	ref := &Reference{
		text:     text,
		preamble: text[:start],
		body:     text[start:end],
	}

	// candidates are unicode-normalized by the sanitizer, so markers are stored the same way
	searchable := ref.SearchableBody()
	if len(opts.RequiredSections) > 0 {
		for _, marker := range opts.RequiredSections {
			marker = NormalizeUnicode(marker)
			if !strings.Contains(searchable, marker) {
				return nil, &ConfigurationError{Message: fmt.Sprintf("required section %s is not present in the reference", marker)}
			}
			ref.sectionMarkers = append(ref.sectionMarkers, marker)
		}
	} else {
		ref.sectionMarkers = SectionMarkers(searchable)
	}
	if len(ref.sectionMarkers) == 0 {
		return nil, &ConfigurationError{Message: "reference defines no section markers"}
	}

	ref.entryList = EntryIdentifiers(NormalizeUnicode(ref.body))
	ref.entryIdentifiers = make(map[string]bool, len(ref.entryList))
	for _, id := range ref.entryList {
		ref.entryIdentifiers[id] = true
	}
	ref.bulletCount = CountBullets(ref.body)

	return ref, nil
}

// LoadReference reads and parses a reference document from disk
func LoadReference(path string, opts Options) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("failed to read reference document: %s", path),
			Cause:   err,
		}
	}
	return NewReference(string(data), opts)
}

// Text returns the full reference document
func (r *Reference) Text() string { return r.text }

// Preamble returns everything up to and including the body-start marker
func (r *Reference) Preamble() string { return r.preamble }

// Body returns the content between the body-start and close markers
func (r *Reference) Body() string { return r.body }

// SearchableBody returns the body as the gate compares it: unicode-normalized, comments removed
func (r *Reference) SearchableBody() string {
	return Searchable(r.body)
}

// Searchable normalizes typography and strips comments so marker lookups ignore both
func Searchable(s string) string {
	return StripComments(NormalizeUnicode(s))
}

// SectionMarkers returns a copy of the required section headers
func (r *Reference) SectionMarkers() []string {
	return append([]string(nil), r.sectionMarkers...)
}

// EntryIdentifiers returns the sorted top-level entry labels
func (r *Reference) EntryIdentifiers() []string {
	return append([]string(nil), r.entryList...)
}

// HasEntry reports whether a normalized entry label belongs to the reference
func (r *Reference) HasEntry(id string) bool {
	return r.entryIdentifiers[id]
}

// BulletCount returns the number of \item bullets in the reference body
func (r *Reference) BulletCount() int { return r.bulletCount }
