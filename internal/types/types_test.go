// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureKind_Recoverable(t *testing.T) {
	tests := []struct {
		kind        FailureKind
		recoverable bool
		fatal       bool
	}{
		{KindMalformedDocument, false, false},
		{KindEmptyOrUnshaped, false, false},
		{KindUnbalancedDelimiters, false, false},
		{KindMissingSection, false, false},
		{KindFabricatedEntry, false, false},
		{KindBulletCountDrift, true, false},
		{KindPipelineConfiguration, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.recoverable, tt.kind.Recoverable())
			assert.Equal(t, tt.fatal, tt.kind.Fatal())
		})
	}
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "OK", Accept().String())

	v := Reject(KindMissingSection, "missing %s", `\section*{PROJECTS}`)
	assert.False(t, v.Accepted)
	assert.Equal(t, `MissingSection: missing \section*{PROJECTS}`, v.String())
}

func TestVerdict_JSONOmitsKindWhenAccepted(t *testing.T) {
	data, err := json.Marshal(Accept())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "failure_kind")
}

func TestTailoredDocument_Accessors(t *testing.T) {
	doc := NewTailoredDocument("PREAMBLEbody", len("PREAMBLE"), 3)
	assert.Equal(t, "PREAMBLE", doc.Preamble())
	assert.Equal(t, "body", doc.Body())
	assert.Equal(t, "PREAMBLEbody", doc.Text())
	assert.Equal(t, 3, doc.BulletCount())
}

func TestTruncateError(t *testing.T) {
	short := "short message"
	assert.Equal(t, short, TruncateError(short))

	long := strings.Repeat("a", MaxErrorLength+10)
	assert.Len(t, TruncateError(long), MaxErrorLength)

	// multi-byte rune straddling the cut must not be split
	straddle := strings.Repeat("a", MaxErrorLength-1) + "é" + "tail"
	got := TruncateError(straddle)
	assert.Equal(t, strings.Repeat("a", MaxErrorLength-1), got)
}

func TestAppKey(t *testing.T) {
	a := AppKey(" Acme ", "Engineer", "https://acme.example/jobs/1")
	b := AppKey("acme", "ENGINEER", "https://acme.example/jobs/1")
	c := AppKey("acme", "engineer", "https://acme.example/jobs/2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestRunLog_Record(t *testing.T) {
	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	log := NewRunLog("abc123", ts)

	first := log.Record(RecordOutcome{RecordID: "p1", Status: OutcomeOK})
	second := first.Record(RecordOutcome{RecordID: "p2", Status: OutcomeError, Reason: "empty_jd"})

	assert.Equal(t, 0, log.Processed, "original log must not change")
	assert.Empty(t, log.Details)

	assert.Equal(t, 1, first.Processed)
	assert.Len(t, first.Details, 1)

	assert.Equal(t, 2, second.Processed)
	assert.Equal(t, 1, second.OK)
	assert.Equal(t, 1, second.Errors)
	assert.Equal(t, "p2", second.Details[1].RecordID)
}

func TestRunLog_JSONShape(t *testing.T) {
	log := NewRunLog("abc123", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	log = log.Record(RecordOutcome{RecordID: "p1", Status: OutcomeError, Reason: "empty_jd"})

	data, err := json.Marshal(log)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"run_id":"abc123"`)
	assert.Contains(t, s, `"processed":1`)
	assert.Contains(t, s, `"errors":1`)
	assert.Contains(t, s, `"page":"p1"`)
	assert.Contains(t, s, `"reason":"empty_jd"`)
}
