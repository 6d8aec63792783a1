package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/document"
)

// loadConfig builds the effective configuration: file, then defaults, then environment.
// Command flags are applied by the caller before validation.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// gateFlags are shared by every command that runs the gate
type gateFlags struct {
	reference string
	maxDrop   int
	maxAdd    int
}

func (g *gateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&g.reference, "reference", "r", "", "Path to the master LaTeX résumé")
	cmd.Flags().IntVar(&g.maxDrop, "max-drop", 0, "Bullets a candidate may drop relative to the reference")
	cmd.Flags().IntVar(&g.maxAdd, "max-add", 0, "Bullets a candidate may add relative to the reference")
}

// apply overrides cfg with the flags that were explicitly set
func (g *gateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("reference") {
		cfg.Reference = g.reference
	}
	if cmd.Flags().Changed("max-drop") {
		cfg.Tolerance.MaxDrop = g.maxDrop
	}
	if cmd.Flags().Changed("max-add") {
		cfg.Tolerance.MaxAdd = g.maxAdd
	}
}

func loadReference(cfg config.Config) (*document.Reference, error) {
	if err := cfg.Tolerance.Check(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return document.LoadReference(cfg.Reference, document.Options{RequiredSections: cfg.RequiredSections})
}

// newLogger builds a JSON production logger, or a debug-level console logger when verbose
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	return cfg.Build()
}
