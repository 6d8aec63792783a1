// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// JobRecord is one job posting read from the record store
type JobRecord struct {
	ID             string `json:"id"`
	Company        string `json:"company"`
	Role           string `json:"role"`
	URL            string `json:"url"`
	JobDescription string `json:"job_description"`
}

// RecordUpdate is the status/result write-back for a job record.
// Nil score pointers and empty link fields are left untouched by stores.
type RecordUpdate struct {
	Status          string   `json:"status"`
	Error           string   `json:"error"`
	RunID           string   `json:"run_id"`
	Model           string   `json:"model"`
	PromptVersion   string   `json:"prompt_version"`
	FitScore        *float64 `json:"fit_score,omitempty"`
	KeywordCoverage *float64 `json:"keyword_coverage,omitempty"`
	ResumePDF       string   `json:"resume_pdf,omitempty"`
	ResumeTeX       string   `json:"resume_tex,omitempty"`
}

// MaxErrorLength caps error text written back to a record
const MaxErrorLength = 2000

// TruncateError shortens text to MaxErrorLength bytes without splitting a UTF-8 sequence
func TruncateError(text string) string {
	if len(text) <= MaxErrorLength {
		return text
	}
	cut := MaxErrorLength
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// AppKey derives the stable application key for a company/role/url triple
func AppKey(company, role, url string) string {
	s := strings.ToLower(strings.TrimSpace(company)) + "|" +
		strings.ToLower(strings.TrimSpace(role)) + "|" +
		strings.TrimSpace(url)
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
