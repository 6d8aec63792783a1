package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/repair"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// RunLogFile is the name of the run log written to the artifact directory
const RunLogFile = "run_log.json"

// RecordStore reads queued job records and accepts status write-backs
type RecordStore interface {
	FetchByStatus(ctx context.Context, status string, limit int) ([]types.JobRecord, error)
	Update(ctx context.Context, id string, update types.RecordUpdate) error
}

// Compiler turns a .tex file into a PDF and returns the PDF path
type Compiler interface {
	Compile(ctx context.Context, texPath string) (string, error)
}

// ArtifactSyncer uploads one record's artifacts and returns their links
type ArtifactSyncer interface {
	Publish(ctx context.Context, set types.ArtifactSet) (types.ArtifactLinks, error)
}

// Describer fetches a job description from a posting URL
type Describer interface {
	Describe(ctx context.Context, rawURL string) (string, error)
}

// Deps are the collaborators of a Runner. Compiler, Syncer, Describer, PageCounter and
// Printer are optional; a nil one skips its step.
type Deps struct {
	Reference   *document.Reference
	Generator   repair.Generator
	Store       RecordStore
	Compiler    Compiler
	Syncer      ArtifactSyncer
	Describer   Describer
	PageCounter func(pdfPath string) (int, error)
	Printer     *observability.Printer
	Logger      *zap.Logger
}

// Options tune a run
type Options struct {
	Statuses      config.Statuses
	Limit         int
	Tolerance     validation.Tolerance
	ArtifactDir   string
	Basename      string
	Model         string
	PromptVersion string
	MaxPages      int
}

// OptionsFromConfig maps the CLI configuration onto run options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Statuses:      cfg.Statuses,
		Limit:         cfg.Limit,
		Tolerance:     cfg.Tolerance,
		ArtifactDir:   cfg.ArtifactDir,
		Basename:      cfg.Basename,
		Model:         cfg.Model,
		PromptVersion: cfg.PromptVersion,
		MaxPages:      cfg.Compiler.MaxPages,
	}
}

// Runner processes queued records one at a time
type Runner struct {
	deps Deps
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// NewRunner validates the collaborators and creates a Runner
func NewRunner(deps Deps, opts Options) (*Runner, error) {
	switch {
	case deps.Reference == nil:
		return nil, &Error{Message: "reference document is required"}
	case deps.Generator == nil:
		return nil, &Error{Message: "generator is required"}
	case deps.Store == nil:
		return nil, &Error{Message: "record store is required"}
	}
	if err := opts.Tolerance.Check(); err != nil {
		return nil, &Error{Message: "invalid tolerance", Cause: err}
	}
	if opts.Basename == "" {
		opts.Basename = "Resume"
	}
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = "artifacts"
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{deps: deps, opts: opts, log: logger.Named("pipeline"), now: time.Now}, nil
}

// Run fetches up to Limit queued records, processes each, and writes the run log.
// Cancelling ctx stops the run between records.
func (r *Runner) Run(ctx context.Context) (types.RunLog, error) {
	runLog := types.NewRunLog(uuid.NewString(), r.now())
	log := r.log.With(zap.String("run_id", runLog.RunID))

	if r.deps.Printer != nil {
		r.deps.Printer.PrintReference(r.deps.Reference)
	}

	records, err := r.deps.Store.FetchByStatus(ctx, r.opts.Statuses.Queued, r.opts.Limit)
	if err != nil {
		return runLog, &Error{Message: "failed to fetch queued records", Cause: err}
	}
	log.Info("fetched queued records",
		zap.String("status", r.opts.Statuses.Queued),
		zap.Int("count", len(records)))

	var runErr error
	for _, rec := range records {
		if ctx.Err() != nil {
			log.Warn("run cancelled", zap.Int("remaining", len(records)-runLog.Processed))
			break
		}
		runLog, runErr = r.ProcessRecord(ctx, runLog, rec)
		if runErr != nil {
			break
		}
	}

	path, err := WriteRunLog(r.opts.ArtifactDir, runLog)
	if err != nil {
		log.Error("failed to write run log", zap.Error(err))
	} else {
		log.Info("run finished",
			zap.Int("processed", runLog.Processed),
			zap.Int("ok", runLog.OK),
			zap.Int("errors", runLog.Errors),
			zap.String("run_log", path))
	}
	if r.deps.Printer != nil {
		r.deps.Printer.PrintRunSummary(runLog)
	}
	return runLog, runErr
}

// ProcessRecord takes one record from queued to done or failed and returns the updated run
// log. Only a fatal configuration failure is returned as an error; every other failure is
// written back to the record and recorded in the log.
func (r *Runner) ProcessRecord(ctx context.Context, runLog types.RunLog, rec types.JobRecord) (types.RunLog, error) {
	log := r.log.With(zap.String("run_id", runLog.RunID), zap.String("record", rec.ID))
	p := &recordRun{
		r:   r,
		ctx: ctx,
		log: log,
		outcome: types.RecordOutcome{
			RecordID: rec.ID,
			Company:  rec.Company,
			Role:     rec.Role,
			URL:      rec.URL,
		},
		update: types.RecordUpdate{
			RunID:         runLog.RunID,
			Model:         r.opts.Model,
			PromptVersion: r.opts.PromptVersion,
		},
	}

	rec.JobDescription = r.describe(ctx, log, rec)
	if strings.TrimSpace(rec.JobDescription) == "" {
		p.outcome.Reason = ReasonEmptyJD
		return runLog.Record(p.fail(EmptyJDMessage)), nil
	}

	res, err := repair.Run(ctx, r.deps.Generator, r.deps.Reference, rec, r.opts.Tolerance)
	p.outcome.Attempts = res.Attempts
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		p.outcome.Reason = err.Error()
		return runLog.Record(p.fail(LabelGeneration + ": " + err.Error())), nil
	}

	if res.Generation.Model != "" {
		p.update.Model = res.Generation.Model
	}
	p.update.FitScore = res.Generation.FitScore
	p.update.KeywordCoverage = res.Generation.KeywordCoverage
	if r.deps.Printer != nil {
		r.deps.Printer.PrintVerdict(label(rec), res.Verdict, res.Attempts)
	}

	if !res.Accepted() {
		if res.Verdict.Kind.Fatal() {
			return runLog, &Error{Message: res.Verdict.String()}
		}
		log.Info("candidate rejected",
			zap.String("kind", string(res.Verdict.Kind)),
			zap.String("detail", res.Verdict.Detail),
			zap.Int("attempts", res.Attempts),
			zap.Stringer("state", res.State))
		p.outcome.Kind = res.Verdict.Kind
		p.outcome.Reason = res.Verdict.Detail
		return runLog.Record(p.fail(res.Verdict.String())), nil
	}

	return runLog.Record(p.deliver(res.Tailored)), nil
}

// describe returns the record's job description, fetching it from the posting when blank
func (r *Runner) describe(ctx context.Context, log *zap.Logger, rec types.JobRecord) string {
	if strings.TrimSpace(rec.JobDescription) != "" || r.deps.Describer == nil || rec.URL == "" {
		return rec.JobDescription
	}
	text, err := r.deps.Describer.Describe(ctx, rec.URL)
	if err != nil {
		log.Warn("failed to fetch job description", zap.String("url", rec.URL), zap.Error(err))
		return ""
	}
	log.Info("fetched job description", zap.Int("chars", len(text)))
	return text
}

func label(rec types.JobRecord) string {
	if rec.Company == "" && rec.Role == "" {
		return rec.ID
	}
	return rec.Company + " / " + rec.Role
}

// recordRun carries the state of one record through the delivery steps
type recordRun struct {
	r       *Runner
	ctx     context.Context
	log     *zap.Logger
	outcome types.RecordOutcome
	update  types.RecordUpdate
}

// deliver writes, compiles and publishes an accepted document
func (p *recordRun) deliver(doc *types.TailoredDocument) types.RecordOutcome {
	opts := p.r.opts
	dir := rendering.ArtifactDir(opts.ArtifactDir, p.outcome.Company, p.outcome.Role)

	texPath, err := rendering.WriteTeX(dir, opts.Basename, doc)
	if err != nil {
		p.outcome.Reason = err.Error()
		return p.fail(LabelRender + ": " + err.Error())
	}
	p.outcome.TeXPath = texPath

	set := types.ArtifactSet{
		Company: p.outcome.Company,
		Role:    p.outcome.Role,
		JobID:   p.outcome.RecordID,
		TeXPath: texPath,
	}

	if p.r.deps.Compiler != nil {
		pdfPath, err := p.r.deps.Compiler.Compile(p.ctx, texPath)
		if err != nil {
			p.log.Warn("compilation failed", zap.Error(err))
			p.outcome.Reason = err.Error()
			return p.fail(LabelCompile + ": " + err.Error())
		}
		p.outcome.PDFPath = pdfPath
		set.PDFPath = pdfPath
		p.checkPages(pdfPath)
	}

	if p.r.deps.Syncer != nil {
		links, err := p.r.deps.Syncer.Publish(p.ctx, set)
		if err != nil {
			p.log.Warn("publish failed", zap.Error(err))
			p.outcome.Reason = err.Error()
			return p.fail(LabelUpload + ": " + err.Error())
		}
		p.outcome.Links = links
		p.update.ResumePDF = links.PDF
		p.update.ResumeTeX = links.TeX
	}

	return p.succeed()
}

// checkPages records a warning when the PDF is longer than allowed
func (p *recordRun) checkPages(pdfPath string) {
	count := p.r.deps.PageCounter
	if count == nil {
		return
	}
	pages, err := count(pdfPath)
	if err != nil {
		p.log.Warn("failed to count pages", zap.String("pdf", pdfPath), zap.Error(err))
		return
	}
	p.outcome.Pages = pages
	if limit := p.r.opts.MaxPages; limit > 0 && pages > limit {
		msg := fmt.Sprintf("compiled to %d pages, limit is %d", pages, limit)
		p.log.Warn("page limit exceeded", zap.Int("pages", pages), zap.Int("max_pages", limit))
		p.outcome.Warnings = append(p.outcome.Warnings, msg)
	}
}

func (p *recordRun) succeed() types.RecordOutcome {
	p.update.Status = p.r.opts.Statuses.Done
	p.update.Error = ""
	p.outcome.Status = types.OutcomeOK
	p.write()
	p.log.Info("record done", zap.String("tex", p.outcome.TeXPath), zap.String("pdf", p.outcome.PDFPath))
	return p.outcome
}

func (p *recordRun) fail(text string) types.RecordOutcome {
	p.update.Status = p.r.opts.Statuses.Failed
	p.update.Error = types.TruncateError(text)
	p.outcome.Status = types.OutcomeError
	p.write()
	return p.outcome
}

// write sends the status write-back; a store failure is logged and kept in the outcome
func (p *recordRun) write() {
	if err := p.r.deps.Store.Update(p.ctx, p.outcome.RecordID, p.update); err != nil {
		p.log.Error("status write-back failed", zap.Error(err))
		p.outcome.StoreError = err.Error()
	}
}

// WriteRunLog writes the log as indented JSON to <dir>/run_log.json
func WriteRunLog(dir string, runLog types.RunLog) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(runLog, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run log: %w", err)
	}
	path := filepath.Join(dir, RunLogFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write run log: %w", err)
	}
	return path, nil
}
