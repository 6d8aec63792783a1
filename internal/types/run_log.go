// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Record outcome statuses recorded in the run log
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ArtifactSet is the local output of one record, ready for upload
type ArtifactSet struct {
	Company string
	Role    string
	JobID   string
	PDFPath string
	TeXPath string
}

// ArtifactLinks are the retrievable remote locations of an uploaded ArtifactSet
type ArtifactLinks struct {
	PDF string `json:"pdf"`
	TeX string `json:"tex"`
}

// RecordOutcome is the run-log entry for one processed record
type RecordOutcome struct {
	RecordID string        `json:"page"`
	Status   string        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Kind     FailureKind   `json:"failure_kind,omitempty"`
	Attempts int           `json:"attempts,omitempty"`
	Company  string        `json:"company,omitempty"`
	Role     string        `json:"role,omitempty"`
	URL      string        `json:"url,omitempty"`
	TeXPath  string        `json:"tex,omitempty"`
	PDFPath  string        `json:"pdf,omitempty"`
	Pages    int           `json:"pages,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Links    ArtifactLinks `json:"links"`
	// StoreError is set when the status write-back itself failed
	StoreError string `json:"store_error,omitempty"`
}

// RunLog accumulates per-record outcomes for a single run.
// It is a value: Record returns an updated copy.
type RunLog struct {
	Timestamp time.Time       `json:"ts"`
	RunID     string          `json:"run_id"`
	Processed int             `json:"processed"`
	OK        int             `json:"ok"`
	Errors    int             `json:"errors"`
	Details   []RecordOutcome `json:"details"`
}

// NewRunLog starts an empty log for a run
func NewRunLog(runID string, ts time.Time) RunLog {
	return RunLog{Timestamp: ts.UTC(), RunID: runID, Details: []RecordOutcome{}}
}

// Record returns a copy of the log with the outcome appended and counters updated
func (l RunLog) Record(outcome RecordOutcome) RunLog {
	details := make([]RecordOutcome, len(l.Details), len(l.Details)+1)
	copy(details, l.Details)
	l.Details = append(details, outcome)
	l.Processed++
	if outcome.Status == OutcomeOK {
		l.OK++
	} else {
		l.Errors++
	}
	return l
}
