package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/document/documenttest"
	"github.com/jonathan/resume-tailor/internal/types"
)

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPrintReference(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ref := documenttest.Reference(t)
	p.PrintReference(ref)
	output := buf.String()

	assert.Contains(t, output, "REFERENCE DOCUMENT")
	assert.Contains(t, output, "Bullets:  14")
	assert.Contains(t, output, `\section*{PROJECTS}`)
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintReference_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReference(nil)
	assert.Empty(t, buf.String())
}

func TestPrintVerdict_Accepted(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVerdict("Acme Corp / Design Engineer", types.Accept(), 1)

	assert.Contains(t, buf.String(), "VERDICT: Acme Corp / Design Engineer")
	assert.Contains(t, buf.String(), "ACCEPTED after 1 generation(s)")
}

func TestPrintVerdict_Rejected(t *testing.T) {
	var buf bytes.Buffer
	v := types.Reject(types.KindBulletCountDrift, "candidate has 9 bullets, reference has 14 (allowed 12..15)")
	NewPrinter(&buf).PrintVerdict("page-1", v, 1)
	output := buf.String()

	assert.Contains(t, output, "BulletCountDrift after 1 generation(s)")
	assert.Contains(t, output, "recoverable")
	assert.Contains(t, output, "candidate has 9 bullets")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	log := types.NewRunLog("run-1", fixedTime).
		Record(types.RecordOutcome{RecordID: "a", Status: types.OutcomeOK}).
		Record(types.RecordOutcome{RecordID: "b", Status: types.OutcomeError, Reason: "empty_jd"}).
		Record(types.RecordOutcome{RecordID: "c", Status: types.OutcomeError, Kind: types.KindFabricatedEntry})

	NewPrinter(&buf).PrintRunSummary(log)
	output := buf.String()

	assert.Contains(t, output, "Processed: 3")
	assert.Contains(t, output, "OK:        1")
	assert.Contains(t, output, "Errors:    2")
	assert.Contains(t, output, "b: empty_jd")
	assert.Contains(t, output, "c: FabricatedEntry")
	assert.NotContains(t, output, "a: ")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", "short\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrap("aaa bbb ccc", 7))
	assert.Nil(t, wrap("   ", 10))
}
