package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/repair"
	"github.com/jonathan/resume-tailor/internal/sanitize"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Gate a candidate résumé against the reference",
	Long: `Runs the offline gate over a candidate file: sanitize, merge the reference preamble, and
validate sections, entries, bullet count and delimiters. Exits non-zero when the candidate is
rejected. With --out the tailored document is written on acceptance.`,
	RunE: runValidate,
}

var (
	validateGate      gateFlags
	validateInput     string
	validateOutput    string
	validateApplyPack bool
	validateJSON      bool
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Print the sanitized form of raw model output",
	RunE:  runSanitize,
}

var sanitizeInput string

func init() {
	validateGate.register(validateCmd)
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the candidate file (required)")
	validateCmd.Flags().StringVar(&validateOutput, "out", "", "Path to write the tailored .tex on acceptance")
	validateCmd.Flags().BoolVar(&validateApplyPack, "apply-pack", false, "Treat the input as an apply-pack JSON response")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the verdict as JSON")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	sanitizeCmd.Flags().StringVarP(&sanitizeInput, "in", "i", "", "Path to the raw model output (required)")
	if err := sanitizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sanitizeCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	validateGate.apply(cmd, &cfg)

	ref, err := loadReference(cfg)
	if err != nil {
		return err
	}

	doc, verdict, err := gateFile(ref, validateInput, cfg.Tolerance, validateApplyPack)
	if err != nil {
		return err
	}

	switch {
	case validateJSON:
		data, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal verdict: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(data))
	case cfg.Verbose:
		observability.NewPrinter(os.Stdout).PrintVerdict(filepath.Base(validateInput), verdict, 1)
	default:
		_, _ = fmt.Fprintln(os.Stdout, verdict.String())
	}

	if !verdict.Accepted {
		return fmt.Errorf("candidate rejected: %s", verdict.Kind)
	}

	if validateOutput != "" {
		if err := writeDocument(validateOutput, doc); err != nil {
			return err
		}
	}
	return nil
}

// gateFile reads a candidate from disk and runs it through the gate
func gateFile(ref *document.Reference, path string, tol validation.Tolerance, applyPack bool) (*types.TailoredDocument, types.Verdict, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Verdict{}, fmt.Errorf("failed to read candidate file: %w", err)
	}

	raw := string(content)
	if applyPack {
		pack, err := llm.ParseApplyPack(raw)
		if err != nil {
			return nil, types.Verdict{}, err
		}
		raw = pack.TailoredLatex
	}

	doc, verdict := repair.Gate(ref, raw, tol)
	return doc, verdict, nil
}

func writeDocument(path string, doc *types.TailoredDocument) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(doc.Text()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func runSanitize(_ *cobra.Command, _ []string) error {
	content, err := os.ReadFile(sanitizeInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	out, err := sanitize.Sanitize(string(content))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, out)
	return nil
}
