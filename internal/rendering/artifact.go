package rendering

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// maxSegmentRunes caps a cleaned path segment
const maxSegmentRunes = 80

// CleanPathSegment turns a company or role name into a safe single path segment
func CleanPathSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "-", `\`, "-").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		return "Unknown"
	}
	if runes := []rune(s); len(runes) > maxSegmentRunes {
		s = string(runes[:maxSegmentRunes])
	}
	return s
}

// ArtifactDir returns the per-job local output directory, <root>/<Company>_<Role>
func ArtifactDir(root, company, role string) string {
	return filepath.Join(root, CleanPathSegment(company)+"_"+CleanPathSegment(role))
}

// WriteTeX writes a tailored document to <dir>/<basename>.tex, creating dir as needed.
// The filename is constant per job so reruns overwrite rather than accumulate.
func WriteTeX(dir, basename string, doc *types.TailoredDocument) (string, error) {
	if doc == nil {
		return "", &RenderError{Message: "no tailored document to write"}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &RenderError{Path: dir, Message: "failed to create artifact directory", Cause: err}
	}

	texPath := filepath.Join(dir, basename+".tex")
	content := doc.Text()
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(texPath, []byte(content), 0644); err != nil {
		return "", &RenderError{Path: texPath, Message: "failed to write LaTeX file", Cause: err}
	}
	return texPath, nil
}
