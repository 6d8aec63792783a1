// Package main provides the resume_tailor CLI: it tailors a master LaTeX résumé to queued job
// records and refuses any candidate that breaks the master's structure.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Tailor a LaTeX résumé to job postings without breaking its structure",
	Long: `resume_tailor reads queued job records from Notion or PostgreSQL, asks Gemini for a tailored
version of a master LaTeX résumé, and gates every candidate against the master before it is
compiled and published. Records are marked done or failed with the reason written back.`,
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and human-readable summaries")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
