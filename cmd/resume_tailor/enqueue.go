package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/types"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Add a job record to the PostgreSQL store",
	Long: `Inserts a job record in the queued status. Records are keyed by company, role and URL, so
enqueueing the same posting twice is a no-op.`,
	RunE: runEnqueue,
}

var (
	enqueueCompany     string
	enqueueRole        string
	enqueueURL         string
	enqueueDescription string
	enqueueJDFile      string
	enqueueDatabaseURL string
)

func init() {
	enqueueCmd.Flags().StringVar(&enqueueCompany, "company", "", "Company name (required)")
	enqueueCmd.Flags().StringVar(&enqueueRole, "role", "", "Role title (required)")
	enqueueCmd.Flags().StringVar(&enqueueURL, "url", "", "Job posting URL")
	enqueueCmd.Flags().StringVar(&enqueueDescription, "jd", "", "Job description text")
	enqueueCmd.Flags().StringVar(&enqueueJDFile, "jd-file", "", "Path to a job description text file")
	enqueueCmd.Flags().StringVar(&enqueueDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	for _, name := range []string{"company", "role"} {
		if err := enqueueCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	enqueueCmd.MarkFlagsMutuallyExclusive("jd", "jd-file")

	rootCmd.AddCommand(enqueueCmd)
}

func runEnqueue(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = enqueueDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (use --db-url or DATABASE_URL)")
	}

	rec, err := buildRecord()
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	id, created, err := database.Enqueue(cmd.Context(), rec, cfg.Statuses.Queued)
	if err != nil {
		return err
	}
	if created {
		_, _ = fmt.Fprintf(os.Stdout, "Enqueued %s (%s / %s)\n", id, rec.Company, rec.Role)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Already queued as %s\n", id)
	}
	return nil
}

// buildRecord assembles the record from the enqueue flags
func buildRecord() (types.JobRecord, error) {
	rec := types.JobRecord{
		Company:        strings.TrimSpace(enqueueCompany),
		Role:           strings.TrimSpace(enqueueRole),
		URL:            strings.TrimSpace(enqueueURL),
		JobDescription: enqueueDescription,
	}
	if rec.Company == "" || rec.Role == "" {
		return rec, fmt.Errorf("company and role must not be blank")
	}
	if enqueueJDFile != "" {
		content, err := os.ReadFile(enqueueJDFile)
		if err != nil {
			return rec, fmt.Errorf("failed to read job description file: %w", err)
		}
		rec.JobDescription = string(content)
	}
	return rec, nil
}
