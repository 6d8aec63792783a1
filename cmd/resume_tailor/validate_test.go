package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/document/documenttest"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGateFile_Accepts(t *testing.T) {
	ref := documenttest.Reference(t)
	path := writeFile(t, "candidate.tex", "Here you go:\n```latex\n"+documenttest.Fixture(t)+"\n```\n")

	doc, verdict, err := gateFile(ref, path, validation.DefaultTolerance, false)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted)
	require.NotNil(t, doc)
	assert.Equal(t, ref.BulletCount(), doc.BulletCount())
}

func TestGateFile_Rejects(t *testing.T) {
	ref := documenttest.Reference(t)
	path := writeFile(t, "candidate.tex", documenttest.DropBullets(documenttest.Fixture(t), 4))

	doc, verdict, err := gateFile(ref, path, validation.DefaultTolerance, false)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, types.KindBulletCountDrift, verdict.Kind)
}

func TestGateFile_ApplyPack(t *testing.T) {
	ref := documenttest.Reference(t)
	pack, err := json.Marshal(llm.ApplyPack{
		TailoredLatex:   documenttest.Fixture(t),
		FitScore:        81,
		KeywordCoverage: 64,
	})
	require.NoError(t, err)
	path := writeFile(t, "pack.json", string(pack))

	_, verdict, err := gateFile(ref, path, validation.DefaultTolerance, true)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted)

	bad := writeFile(t, "bad.json", `{"fit_score": 10}`)
	_, _, err = gateFile(ref, bad, validation.DefaultTolerance, true)
	var respErr *llm.ResponseError
	assert.ErrorAs(t, err, &respErr)
}

func TestGateFile_MissingInput(t *testing.T) {
	_, _, err := gateFile(documenttest.Reference(t), filepath.Join(t.TempDir(), "none.tex"), validation.DefaultTolerance, false)
	assert.ErrorContains(t, err, "failed to read candidate file")
}

func TestWriteDocument(t *testing.T) {
	doc := types.NewTailoredDocument("\\documentclass{article}\\begin{document}x\\end{document}", 39, 0)
	path := filepath.Join(t.TempDir(), "out", "Resume.tex")

	require.NoError(t, writeDocument(path, doc))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Text()+"\n", string(data))
}

func TestValidateCommand_MissingInputFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "validate")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"in\" not set")
}

func TestValidateCommand_RejectsDrift(t *testing.T) {
	binaryPath := getBinaryPath(t)
	candidate := writeFile(t, "candidate.tex", documenttest.DropBullets(documenttest.Fixture(t), 4))

	cmd := exec.Command(binaryPath, "validate", "--reference", documenttest.FixturePath(), "--in", candidate)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "BulletCountDrift: candidate has 10 bullets, reference has 14")
}

func TestValidateCommand_WritesOutput(t *testing.T) {
	binaryPath := getBinaryPath(t)
	candidate := writeFile(t, "candidate.tex", documenttest.Fixture(t))
	out := filepath.Join(t.TempDir(), "tailored.tex")

	cmd := exec.Command(binaryPath, "validate", "--reference", documenttest.FixturePath(), "--in", candidate, "--out", out)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Equal(t, "OK", strings.TrimSpace(string(output)))
	assert.FileExists(t, out)
}

func TestSanitizeCommand_Malformed(t *testing.T) {
	binaryPath := getBinaryPath(t)
	input := writeFile(t, "raw.txt", "I cannot help with that.")

	cmd := exec.Command(binaryPath, "sanitize", "--in", input)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "malformed document: missing start marker")
}
