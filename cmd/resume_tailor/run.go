package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compile"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/notion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/storage"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Process queued job records end to end",
	Long: `Fetches up to --limit records in the queued status, generates a tailored résumé for each,
gates it against the reference, compiles and publishes accepted documents, and writes the
outcome back to every record. A run log is written to the artifact directory.

Configuration can be loaded from a file using --config. Flags override config file values.`,
	RunE: runRunCmd,
}

var (
	runGate        gateFlags
	runStore       string
	runLimit       int
	runArtifactDir string
	runModel       string
	runEngine      string
	runStorage     string
	runFetchJD     bool
	runUseBrowser  bool
	runAPIKey      string
	runDatabaseURL string
)

func init() {
	runGate.register(runCommand)
	runCommand.Flags().StringVar(&runStore, "store", "", "Record store: notion or postgres")
	runCommand.Flags().IntVarP(&runLimit, "limit", "l", 0, "Maximum records to process (1-100)")
	runCommand.Flags().StringVarP(&runArtifactDir, "artifacts", "o", "", "Directory for .tex/.pdf artifacts and the run log")
	runCommand.Flags().StringVar(&runModel, "model", "", "Gemini model name")
	runCommand.Flags().StringVar(&runEngine, "engine", "", "LaTeX engine: tectonic or pdflatex")
	runCommand.Flags().StringVar(&runStorage, "storage", "", "Artifact storage backend: none, local or azure")
	runCommand.Flags().BoolVar(&runFetchJD, "fetch-missing-jd", false, "Fetch blank job descriptions from the posting URL")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless Chrome when a posting needs JavaScript")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (use --api-key or GEMINI_API_KEY)")
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ref, err := loadReference(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := llm.NewClient(ctx, llm.ForModel(cfg.Model), cfg.APIKey, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	publisher, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Reference:   ref,
		Generator:   llm.NewGenerator(client, llm.TierStandard, logger),
		Store:       store,
		Compiler:    compile.NewCompiler(cfg.Compiler, logger),
		PageCounter: compile.PageCount,
		Logger:      logger,
	}
	// a nil *Publisher must not become a non-nil interface
	if publisher != nil {
		deps.Syncer = publisher
	}
	if cfg.FetchMissingJD {
		deps.Describer = fetch.NewDescriber(fetch.DefaultOptions(), cfg.UseBrowser, logger)
	}
	if cfg.Verbose {
		deps.Printer = observability.NewPrinter(os.Stdout)
	}

	runner, err := pipeline.NewRunner(deps, pipeline.OptionsFromConfig(&cfg))
	if err != nil {
		return err
	}

	runLog, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if !cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Processed %d record(s): %d ok, %d error(s)\n", runLog.Processed, runLog.OK, runLog.Errors)
	}
	return nil
}

// applyRunFlags overrides cfg with the run flags that were explicitly set
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	runGate.apply(cmd, cfg)

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = runStore
	}
	if flags.Changed("limit") {
		cfg.Limit = runLimit
	}
	if flags.Changed("artifacts") {
		cfg.ArtifactDir = runArtifactDir
	}
	if flags.Changed("model") {
		cfg.Model = runModel
	}
	if flags.Changed("engine") {
		cfg.Compiler.Engine = runEngine
	}
	if flags.Changed("storage") {
		cfg.Storage.Backend = runStorage
	}
	if flags.Changed("fetch-missing-jd") {
		cfg.FetchMissingJD = runFetchJD
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
}

// openStore connects the configured record store and returns its release function
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (pipeline.RecordStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database, database.Close, nil
	case config.StoreNotion, "":
		client, err := notion.NewClient(cfg.Notion, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown record store %q", cfg.Store)
	}
}
