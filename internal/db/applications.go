package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/types"
)

// MaxFetch caps the number of records returned by one FetchByStatus call
const MaxFetch = 100

// ErrRecordNotFound is returned by Update when no row has the given id
var ErrRecordNotFound = errors.New("job application not found")

const updateSQL = `UPDATE job_applications SET
	status = $2,
	errors = $3,
	run_id = COALESCE(NULLIF($4, ''), run_id),
	model = COALESCE(NULLIF($5, ''), model),
	prompt_version = COALESCE(NULLIF($6, ''), prompt_version),
	fit_score = COALESCE($7, fit_score),
	keyword_coverage = COALESCE($8, keyword_coverage),
	resume_pdf = COALESCE(NULLIF($9, ''), resume_pdf),
	resume_tex = COALESCE(NULLIF($10, ''), resume_tex),
	updated_at = NOW()
	WHERE id = $1`

// FetchByStatus returns up to limit applications with the given status, oldest first
func (db *DB) FetchByStatus(ctx context.Context, status string, limit int) ([]types.JobRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, company, role, url, job_description
		 FROM job_applications WHERE status = $1
		 ORDER BY created_at ASC LIMIT $2`,
		status, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	records := []types.JobRecord{}
	for rows.Next() {
		var id uuid.UUID
		var rec types.JobRecord
		if err := rows.Scan(&id, &rec.Company, &rec.Role, &rec.URL, &rec.JobDescription); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		rec.ID = id.String()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}
	return records, nil
}

// Update writes a status/result back to one application.
// Empty metadata fields and nil scores keep their stored values; Error is always written.
func (db *DB) Update(ctx context.Context, id string, update types.RecordUpdate) error {
	args, err := updateArgs(id, update)
	if err != nil {
		return err
	}

	result, err := db.pool.Exec(ctx, updateSQL, args...)
	if err != nil {
		return fmt.Errorf("failed to update application %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return nil
}

// Enqueue inserts a new application with the queued status. When an application with the
// same company/role/url already exists its id is returned and created is false.
func (db *DB) Enqueue(ctx context.Context, rec types.JobRecord, status string) (id string, created bool, err error) {
	if strings.TrimSpace(rec.Company) == "" || strings.TrimSpace(rec.Role) == "" {
		return "", false, fmt.Errorf("company and role are required")
	}

	key := types.AppKey(rec.Company, rec.Role, rec.URL)
	var newID uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_applications (id, app_key, company, role, url, job_description, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (app_key) DO NOTHING
		 RETURNING id`,
		uuid.New(), key, strings.TrimSpace(rec.Company), strings.TrimSpace(rec.Role),
		strings.TrimSpace(rec.URL), rec.JobDescription, status,
	).Scan(&newID)
	if err == nil {
		return newID.String(), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("failed to enqueue application: %w", err)
	}

	var existing uuid.UUID
	if err := db.pool.QueryRow(ctx,
		`SELECT id FROM job_applications WHERE app_key = $1`, key,
	).Scan(&existing); err != nil {
		return "", false, fmt.Errorf("failed to look up existing application: %w", err)
	}
	return existing.String(), false, nil
}

func clampLimit(limit int) int {
	return min(max(limit, 1), MaxFetch)
}

// updateArgs builds the positional arguments for updateSQL
func updateArgs(id string, update types.RecordUpdate) ([]any, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid application id %q: %w", id, err)
	}
	if update.Status == "" {
		return nil, fmt.Errorf("status is required for application %s", id)
	}

	return []any{
		parsed,
		update.Status,
		types.TruncateError(update.Error),
		update.RunID,
		update.Model,
		update.PromptVersion,
		update.FitScore,
		update.KeywordCoverage,
		update.ResumePDF,
		update.ResumeTeX,
	}, nil
}
