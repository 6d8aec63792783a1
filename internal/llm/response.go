package llm

import "strings"

// ExtractJSON returns the first complete JSON object in a model response. Code fences and any
// conversational text around the object are dropped. Braces inside JSON strings do not count,
// so LaTeX in tailored_latex cannot end the object early. An input without an object is
// returned trimmed so the schema check can report it.
func ExtractJSON(text string) string {
	text = stripFence(strings.TrimSpace(text))

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	if end := objectEnd(text[start:]); end > 0 {
		return text[start : start+end]
	}
	return text[start:]
}

// stripFence unwraps a ``` or ```json block
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{ ") {
		text = text[nl+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// objectEnd returns the length of the object starting at s[0], or 0 when it is unterminated
func objectEnd(s string) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}
