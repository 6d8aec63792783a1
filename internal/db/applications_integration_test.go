//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	mg, err := NewMigrator(databaseURL)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	db, err := Connect(context.Background(), databaseURL)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func cleanup(t *testing.T, db *DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, _ = db.pool.Exec(context.Background(), `DELETE FROM job_applications WHERE id = $1`, id)
	}
}

func TestApplications_EnqueueFetchUpdate(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	status := "Queued " + uuid.NewString()

	rec := types.JobRecord{
		Company:        "Acme Corp",
		Role:           "Design Engineer",
		URL:            "https://example.com/jobs/" + uuid.NewString(),
		JobDescription: "Design fixtures.",
	}
	id, created, err := db.Enqueue(ctx, rec, status)
	require.NoError(t, err)
	assert.True(t, created)
	defer cleanup(t, db, id)

	again, created, err := db.Enqueue(ctx, rec, status)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	records, err := db.FetchByStatus(ctx, status, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "Design fixtures.", records[0].JobDescription)

	score := 91.0
	require.NoError(t, db.Update(ctx, id, types.RecordUpdate{
		Status:   "Applied",
		RunID:    "run-1",
		FitScore: &score,
	}))

	records, err = db.FetchByStatus(ctx, status, 5)
	require.NoError(t, err)
	assert.Empty(t, records)

	// empty metadata keeps stored values
	require.NoError(t, db.Update(ctx, id, types.RecordUpdate{Status: "Applied"}))
	var runID string
	var fit *float64
	require.NoError(t, db.pool.QueryRow(ctx,
		`SELECT run_id, fit_score FROM job_applications WHERE id = $1`, id).Scan(&runID, &fit))
	assert.Equal(t, "run-1", runID)
	require.NotNil(t, fit)
	assert.InDelta(t, 91.0, *fit, 0.001)
}

func TestApplications_UpdateMissing(t *testing.T) {
	db := getTestDB(t)
	err := db.Update(context.Background(), uuid.NewString(), types.RecordUpdate{Status: "Applied"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
