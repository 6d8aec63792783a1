// Package sanitize isolates the LaTeX document inside raw model output and normalizes it.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/rendering"
)

var (
	fenceLine = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$")
	// the opening command with its leading backslash dropped, at the start of a line
	bareOpen = regexp.MustCompile(`(?m)^[ \t]*documentclass\b`)
)

// topLevelCommands may legitimately begin the first line of a document
var topLevelCommands = []string{"documentclass"}

// Sanitize turns raw model output into a document that starts with the opening marker and ends
// with the closing marker. Missing markers are reported as *MalformedDocumentError.
func Sanitize(raw string) (string, error) {
	text := stripControl(raw)
	text = stripFences(text)

	text, err := isolate(text)
	if err != nil {
		return "", err
	}

	text = repairFirstLine(text)
	text = document.NormalizeUnicode(text)
	return rendering.EscapeReserved(text), nil
}

// stripControl removes byte-order marks and NUL bytes and normalizes line endings
func stripControl(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// stripFences unwraps a fenced code block. When the fenced content holds the document it
// becomes the whole text; otherwise only the fence lines themselves are dropped.
func stripFences(s string) string {
	fences := fenceLine.FindAllStringIndex(s, -1)
	if len(fences) == 0 {
		return s
	}

	if len(fences) >= 2 {
		first, last := fences[0], fences[len(fences)-1]
		inner := s[first[1]:last[0]]
		if containsOpen(inner) {
			return strings.Trim(fenceLine.ReplaceAllString(inner, ""), "\n")
		}
	}
	return fenceLine.ReplaceAllString(s, "")
}

func containsOpen(s string) bool {
	return strings.Contains(s, document.OpenMarker) || bareOpen.MatchString(s)
}

// isolate slices from the first opening marker to the last closing marker
func isolate(s string) (string, error) {
	start := strings.Index(s, document.OpenMarker)
	if loc := bareOpen.FindStringIndex(s); loc != nil {
		bare := loc[1] - len("documentclass")
		if start < 0 || bare < start {
			start = bare
		}
	}
	if start < 0 {
		return "", &MalformedDocumentError{Message: "missing start marker"}
	}

	end := strings.LastIndex(s, document.CloseMarker)
	if end < start {
		return "", &MalformedDocumentError{Message: "missing end marker"}
	}

	return s[start : end+len(document.CloseMarker)], nil
}

// repairFirstLine restores a dropped leading backslash on a known top-level command
func repairFirstLine(s string) string {
	if strings.HasPrefix(s, `\`) {
		return s
	}
	for _, cmd := range topLevelCommands {
		if strings.HasPrefix(s, cmd) {
			return `\` + s
		}
	}
	return s
}
