// Package document models the reference résumé and the LaTeX scanning rules shared by the gate.
package document

import (
	"regexp"
	"sort"
	"strings"
)

// Mandatory document tokens
const (
	OpenMarker      = `\documentclass`
	BodyStartMarker = `\begin{document}`
	CloseMarker     = `\end{document}`
)

var (
	sectionPattern = regexp.MustCompile(`\\section\*?\{[^}]*\}`)
	// \itemsep and friends do not match
	bulletPattern  = regexp.MustCompile(`\\item\b`)
	environPattern = regexp.MustCompile(`\\(begin|end)[ \t]*\{([^}]*)\}`)
	// list boundaries and bold labels in one pass, so list depth is known at each label
	entryScan = regexp.MustCompile(`\\(?:(begin|end)[ \t]*\{(?:itemize|enumerate|description)\*?\}|textbf[ \t]*\{)`)
)

// protectedCommands take a first argument that is copied verbatim, so % and # inside it are literal
var protectedCommands = []string{`\url{`, `\href{`}

// IsEscaped reports whether the byte at i is preceded by an odd run of backslashes
func IsEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// ProtectedEnd returns the index just past the first argument of a \url or \href starting at i,
// or i when no protected command starts there. An unterminated argument protects the rest of the line.
func ProtectedEnd(line string, i int) int {
	if line[i] != '\\' || IsEscaped(line, i) {
		return i
	}
	for _, cmd := range protectedCommands {
		if !strings.HasPrefix(line[i:], cmd) {
			continue
		}
		depth := 0
		for j := i + len(cmd) - 1; j < len(line); j++ {
			switch line[j] {
			case '{':
				if !IsEscaped(line, j) {
					depth++
				}
			case '}':
				if !IsEscaped(line, j) {
					depth--
					if depth == 0 {
						return j + 1
					}
				}
			}
		}
		return len(line)
	}
	return i
}

// StripComments removes unescaped % comments, keeping line structure.
// A % inside a URL argument is part of the URL.
func StripComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if end := ProtectedEnd(line, j); end > j {
				j = end - 1
				continue
			}
			if line[j] == '%' && !IsEscaped(line, j) {
				lines[i] = line[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// CountBraces counts unescaped { and } outside comments
func CountBraces(s string) (open, closed int) {
	s = StripComments(s)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if !IsEscaped(s, i) {
				open++
			}
		case '}':
			if !IsEscaped(s, i) {
				closed++
			}
		}
	}
	return open, closed
}

// EnvironmentMismatch returns a description of the first \begin/\end pairing error, or "" when every
// environment is closed in order. The document environment itself is included.
func EnvironmentMismatch(s string) string {
	s = StripComments(s)
	var stack []string
	for _, m := range environPattern.FindAllStringSubmatch(s, -1) {
		name := strings.TrimSpace(m[2])
		if m[1] == "begin" {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 {
			return `\end{` + name + `} without matching \begin`
		}
		top := stack[len(stack)-1]
		if top != name {
			return `\end{` + name + `} closes \begin{` + top + `}`
		}
		stack = stack[:len(stack)-1]
	}
	if len(stack) > 0 {
		return `\begin{` + stack[len(stack)-1] + `} is never closed`
	}
	return ""
}

// CountBullets counts \item markers outside comments
func CountBullets(s string) int {
	return len(bulletPattern.FindAllStringIndex(StripComments(s), -1))
}

// SectionMarkers returns the literal section headers in order of appearance
func SectionMarkers(s string) []string {
	return sectionPattern.FindAllString(StripComments(s), -1)
}

// EntryIdentifiers returns the sorted, de-duplicated labels of top-level bold entries: every
// \textbf{...} outside itemize, enumerate and description lists, wherever it sits on its line.
// Bold text on an \item line is not an entry.
func EntryIdentifiers(s string) []string {
	s = StripComments(s)
	seen := make(map[string]bool)
	var ids []string
	depth, skipUntil := 0, 0
	for _, m := range entryScan.FindAllStringSubmatchIndex(s, -1) {
		if m[0] < skipUntil || IsEscaped(s, m[0]) {
			continue
		}
		if m[2] >= 0 {
			if s[m[2]:m[3]] == "begin" {
				depth++
			} else if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 || onItemLine(s, m[0]) {
			continue
		}

		open := m[1] - 1
		arg, ok := braceArgument(s, open)
		if !ok {
			continue
		}
		skipUntil = open + len(arg) + 2
		id := NormalizeIdentifier(arg)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func onItemLine(s string, i int) bool {
	start := strings.LastIndexByte(s[:i], '\n') + 1
	return bulletPattern.MatchString(s[start:i])
}

// NormalizeIdentifier collapses whitespace so cosmetic spacing changes do not count as new entries
func NormalizeIdentifier(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// braceArgument returns the content of the brace group opening at s[start]
func braceArgument(s string, start int) (string, bool) {
	if start >= len(s) || s[start] != '{' {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			if !IsEscaped(s, i) {
				depth++
			}
		case '}':
			if IsEscaped(s, i) {
				continue
			}
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}
