package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/document/documenttest"
	"github.com/jonathan/resume-tailor/internal/types"
)

func TestValidate_ReferenceAcceptsItself(t *testing.T) {
	ref := documenttest.Reference(t)
	v := Validate(ref, ref.Text(), DefaultTolerance)
	if diff := cmp.Diff(types.Accept(), v); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_Shape(t *testing.T) {
	ref := documenttest.Reference(t)

	tests := []struct {
		name      string
		candidate string
		detail    string
	}{
		{"empty", "", "empty output"},
		{"whitespace", " \n\t", "empty output"},
		{"no body start", strings.Replace(ref.Text(), document.BodyStartMarker, "", 1), `missing tokens: \begin{document}`},
		{"prose", "I'm sorry, I can't do that.", `missing tokens: \documentclass, \begin{document}, \end{document}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(ref, tt.candidate, DefaultTolerance)
			assert.False(t, v.Accepted)
			assert.Equal(t, types.KindEmptyOrUnshaped, v.Kind)
			assert.Equal(t, tt.detail, v.Detail)
		})
	}
}

func TestValidate_Balance(t *testing.T) {
	ref := documenttest.Reference(t)

	tests := []struct {
		name      string
		candidate string
		detail    string
	}{
		{
			name:      "dropped closing brace",
			candidate: strings.Replace(ref.Text(), `\textbf{FDM 3D Printer (Solo)}`, `\textbf{FDM 3D Printer (Solo)`, 1),
			detail:    "unbalanced braces",
		},
		{
			name:      "unclosed environment",
			candidate: documenttest.RemoveLine(ref.Text(), `\end{itemize}`),
			detail:    "unbalanced environments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(ref, tt.candidate, DefaultTolerance)
			assert.Equal(t, types.KindUnbalancedDelimiters, v.Kind)
			assert.Contains(t, v.Detail, tt.detail)
		})
	}
}

func TestValidate_BalanceIgnoresCommentsAndBrackets(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := strings.Replace(ref.Text(),
		`\section*{PROJECTS}`,
		"% stray { in a comment\n\\section*{PROJECTS}\nTolerances held within [0, 1) mm.", 1)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestValidate_MissingSection(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := documenttest.RemoveLine(ref.Text(), `\section*{PROJECTS}`)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.False(t, v.Accepted)
	assert.Equal(t, types.KindMissingSection, v.Kind)
	assert.Equal(t, `missing \section*{PROJECTS}`, v.Detail)
	assert.False(t, v.Kind.Recoverable())
}

func TestValidate_MissingSectionWinsOverLaterChecks(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := documenttest.RemoveLine(ref.Text(), `\section*{SUMMARY}`)
	candidate = documenttest.InsertBefore(candidate, `\section*{PROJECTS}`, `\textbf{Invented Role, Nowhere Inc.}`)
	candidate = documenttest.DropBullets(candidate, 6)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.Equal(t, types.KindMissingSection, v.Kind)
}

func TestValidate_FabricatedEntry(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := documenttest.InsertBefore(ref.Text(), `\section*{PROJECTS}`,
		`\textbf{Senior Staff Engineer, Fake Corp, Austin, TX} \hfill 2019 - 2020`)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.False(t, v.Accepted)
	assert.Equal(t, types.KindFabricatedEntry, v.Kind)
	assert.Equal(t, "entries not in reference: Senior Staff Engineer, Fake Corp, Austin, TX", v.Detail)
	assert.Equal(t, ref.BulletCount(), document.CountBullets(candidate))
}

func TestValidate_FabricatedEntryBehindLayoutCommands(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"noindent", `\noindent\textbf{Senior Engineer, Google, Mountain View, CA} \hfill 1/2024 - 5/2025`},
		{"vspace", `\vspace{-4pt} \textbf{Senior Engineer, Google}`},
		{"hspace", `\hspace{2pt}\textbf{Senior Engineer, Google}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := documenttest.Reference(t)
			candidate := documenttest.InsertBefore(ref.Text(), `\section*{PROJECTS}`, tt.block)

			v := Validate(ref, candidate, DefaultTolerance)
			assert.Equal(t, types.KindFabricatedEntry, v.Kind, v.String())
			assert.Contains(t, v.Detail, "Senior Engineer, Google")
		})
	}
}

func TestValidate_BoldContinuationInsideListIsNotAnEntry(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := strings.Replace(ref.Text(),
		`\item Designed suspension`, "\\item\n  \\textbf{Suspension:} Designed suspension", 1)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestValidate_CommentedOutSectionIsMissing(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := strings.Replace(ref.Text(), `\section*{EDUCATION}`, `% \section*{EDUCATION}`, 1)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.Equal(t, types.KindMissingSection, v.Kind)
	assert.Equal(t, `missing \section*{EDUCATION}`, v.Detail)
}

func TestValidate_TypographicSectionMarker(t *testing.T) {
	text := strings.Replace(documenttest.Fixture(t), `\section*{PROJECTS}`, "\\section*{PROJECTS \u2013 SELECTED}", 1)
	ref, err := document.NewReference(text, document.Options{})
	require.NoError(t, err)

	assert.True(t, Validate(ref, ref.Text(), DefaultTolerance).Accepted)

	v := Validate(ref, document.NormalizeUnicode(ref.Text()), DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestValidate_PercentEncodedLink(t *testing.T) {
	text := strings.Replace(documenttest.Fixture(t),
		`\href{https://example.com/alex_rivera}`, `\href{https://example.com/alex%20rivera}`, 1)
	ref, err := document.NewReference(text, document.Options{})
	require.NoError(t, err)

	v := Validate(ref, ref.Text(), DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestValidate_EntryComparisonIsCosmetic(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := strings.Replace(ref.Text(),
		`\textbf{FDM 3D Printer (Solo)}`, "\\textbf{FDM  3D\u00a0Printer (Solo) }", 1)
	candidate = strings.Replace(candidate,
		`\item Designed suspension`, `\item \textbf{New emphasis:} Designed suspension`, 1)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestValidate_BulletBand(t *testing.T) {
	ref := documenttest.Reference(t)
	tol := Tolerance{MaxDrop: 2, MaxAdd: 1}

	tests := []struct {
		name     string
		mutate   func(string) string
		accepted bool
	}{
		{"exact", func(s string) string { return s }, true},
		{"two fewer at boundary", func(s string) string { return documenttest.DropBullets(s, 2) }, true},
		{"three fewer", func(s string) string { return documenttest.DropBullets(s, 3) }, false},
		{"five fewer", func(s string) string { return documenttest.DropBullets(s, 5) }, false},
		{"one more at boundary", func(s string) string { return documenttest.AddBullets(s, 1) }, true},
		{"two more", func(s string) string { return documenttest.AddBullets(s, 2) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(ref, tt.mutate(ref.Text()), tol)
			assert.Equal(t, tt.accepted, v.Accepted, v.String())
			if !tt.accepted {
				assert.Equal(t, types.KindBulletCountDrift, v.Kind)
				assert.True(t, v.Kind.Recoverable())
			}
		})
	}
}

func TestValidate_BulletDriftDetail(t *testing.T) {
	ref := documenttest.Reference(t)
	v := Validate(ref, documenttest.DropBullets(ref.Text(), 5), DefaultTolerance)
	assert.Equal(t, "candidate has 9 bullets, reference has 14 (allowed 12..15)", v.Detail)
	assert.Equal(t, "BulletCountDrift: candidate has 9 bullets, reference has 14 (allowed 12..15)", v.String())
}

func TestValidate_PreambleBulletsIgnored(t *testing.T) {
	ref := documenttest.Reference(t)
	candidate := strings.Replace(ref.Text(), `\pagenumbering{gobble}`,
		"\\pagenumbering{gobble}\n\\newcommand{\\resumeitem}{\\item}\n\\newcommand{\\x}{\\item}\n\\newcommand{\\y}{\\item}", 1)

	v := Validate(ref, candidate, DefaultTolerance)
	assert.True(t, v.Accepted, v.String())
}

func TestTolerance_Check(t *testing.T) {
	assert.NoError(t, DefaultTolerance.Check())
	assert.NoError(t, Tolerance{}.Check())
	assert.Error(t, Tolerance{MaxDrop: -1}.Check())
	assert.Error(t, Tolerance{MaxAdd: -1}.Check())
}

func TestTolerance_Band(t *testing.T) {
	lo, hi := Tolerance{MaxDrop: 2, MaxAdd: 1}.Band(14)
	assert.Equal(t, 12, lo)
	assert.Equal(t, 15, hi)
}
