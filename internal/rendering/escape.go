// Package rendering materializes tailored LaTeX résumés: reserved-character escaping and artifact files.
package rendering

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
)

// Reserved are the characters LaTeX treats as control characters inside running text
const Reserved = `&%$#`

// EscapeReserved escapes LaTeX reserved characters that are not already escaped.
// A character preceded by an odd run of backslashes counts as escaped, so applying
// EscapeReserved twice gives the same result as applying it once. Whole-line %
// comments and URL arguments of \url and \href are left untouched.
func EscapeReserved(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "%") {
			continue
		}
		lines[i] = escapeLine(line)
	}
	return strings.Join(lines, "\n")
}

func escapeLine(line string) string {
	var result strings.Builder
	result.Grow(len(line) + 8)

	for i := 0; i < len(line); {
		if end := document.ProtectedEnd(line, i); end > i {
			result.WriteString(line[i:end])
			i = end
			continue
		}

		c := line[i]
		if strings.IndexByte(Reserved, c) >= 0 && !document.IsEscaped(line, i) {
			result.WriteByte('\\')
		}
		result.WriteByte(c)
		i++
	}

	return result.String()
}
