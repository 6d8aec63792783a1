// Package documenttest provides the reference résumé fixture and candidate mutations for tests.
package documenttest

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/document"
)

// FixturePath returns the absolute path of the reference fixture
func FixturePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "testdata", "reference.tex")
}

// Fixture returns the raw reference fixture text
func Fixture(t testing.TB) string {
	t.Helper()
	data, err := os.ReadFile(FixturePath())
	require.NoError(t, err)
	return string(data)
}

// Reference parses the reference fixture
func Reference(t testing.TB) *document.Reference {
	t.Helper()
	ref, err := document.NewReference(Fixture(t), document.Options{})
	require.NoError(t, err)
	return ref
}

// DropBullets removes the last n \item lines
func DropBullets(text string, n int) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0 && n > 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), `\item `) {
			lines = append(lines[:i], lines[i+1:]...)
			n--
		}
	}
	return strings.Join(lines, "\n")
}

// AddBullets duplicates the last \item line n times
func AddBullets(text string, n int) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), `\item `) {
			extra := make([]string, n)
			for j := range extra {
				extra[j] = lines[i]
			}
			tail := append(extra, lines[i+1:]...)
			lines = append(lines[:i+1], tail...)
			break
		}
	}
	return strings.Join(lines, "\n")
}

// RemoveLine deletes the first line equal to target after trimming
func RemoveLine(text, target string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == target {
			return strings.Join(append(lines[:i], lines[i+1:]...), "\n")
		}
	}
	return text
}

// InsertBefore places block on its own line before the first occurrence of anchor
func InsertBefore(text, anchor, block string) string {
	i := strings.Index(text, anchor)
	if i < 0 {
		return text
	}
	return text[:i] + block + "\n\n" + text[i:]
}
