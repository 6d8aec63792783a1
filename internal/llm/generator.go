package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/repair"
	"github.com/jonathan/resume-tailor/internal/schemas"
	schemafiles "github.com/jonathan/resume-tailor/schemas"
)

const promptFile = "tailoring.json"

// ApplyPack is the JSON contract the model answers with
type ApplyPack struct {
	TailoredLatex   string   `json:"tailored_latex"`
	FitScore        float64  `json:"fit_score"`
	KeywordCoverage float64  `json:"keyword_coverage"`
	TopKeywords     []string `json:"top_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// Generator asks the model for a tailored résumé and returns its untrusted LaTeX with scores.
// It implements repair.Generator.
type Generator struct {
	client Client
	tier   ModelTier
	logger *zap.Logger
}

// NewGenerator creates a generator on top of an LLM client
func NewGenerator(client Client, tier ModelTier, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tier == "" {
		tier = TierStandard
	}
	return &Generator{client: client, tier: tier, logger: logger}
}

// Generate builds the tailoring prompt, calls the model and checks the response against the
// apply-pack schema. The LaTeX itself is not inspected here.
func (g *Generator) Generate(ctx context.Context, req repair.GenerationRequest) (repair.Generation, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return repair.Generation{}, err
	}

	if found := prompts.ScanExternalContent(req.Job.JobDescription); len(found) > 0 {
		g.logger.Warn("job description contains instruction-like text",
			zap.String("record", req.Job.ID), zap.Strings("phrases", found))
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return repair.Generation{}, err
	}

	pack, err := ParseApplyPack(raw)
	if err != nil {
		return repair.Generation{}, err
	}

	return repair.Generation{
		Text:            pack.TailoredLatex,
		Model:           g.client.GetModel(g.tier),
		FitScore:        &pack.FitScore,
		KeywordCoverage: &pack.KeywordCoverage,
		TopKeywords:     pack.TopKeywords,
		MissingKeywords: pack.MissingKeywords,
	}, nil
}

// BuildPrompt renders the tailoring prompt for a request; corrective requests append the
// bullet-parity instruction quoting the rejection detail
func BuildPrompt(req repair.GenerationRequest) (string, error) {
	if req.Reference == nil {
		return "", errors.New("generation request has no reference document")
	}

	instructions, err := prompts.Get(promptFile, "instructions")
	if err != nil {
		return "", err
	}

	bullets := strconv.Itoa(req.Reference.BulletCount())
	prompt, err := prompts.Render(promptFile, "tailor-resume", map[string]string{
		"Instructions":   instructions,
		"Company":        req.Job.Company,
		"Role":           req.Job.Role,
		"URL":            req.Job.URL,
		"JobDescription": prompts.QuoteExternalContent(strings.TrimSpace(req.Job.JobDescription), "job description"),
		"Master":         req.Reference.Text(),
		"BulletCount":    bullets,
	})
	if err != nil {
		return "", err
	}

	if req.Corrective {
		corrective, err := prompts.Render(promptFile, "corrective", map[string]string{
			"Feedback":    req.Feedback,
			"BulletCount": bullets,
		})
		if err != nil {
			return "", err
		}
		prompt += "\n\n" + corrective
	}
	return prompt, nil
}

// ParseApplyPack validates a JSON answer against the apply-pack schema and decodes it
func ParseApplyPack(raw string) (*ApplyPack, error) {
	raw = ExtractJSON(raw)
	if err := schemas.Validate(schemafiles.ApplyPack, raw); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &ResponseError{Message: "apply pack does not match schema: " + validationErr.Summary()}
		}
		return nil, &ResponseError{Message: "apply pack is not valid JSON", Cause: err}
	}

	var pack ApplyPack
	if err := json.Unmarshal([]byte(raw), &pack); err != nil {
		return nil, &ResponseError{Message: "failed to decode apply pack", Cause: err}
	}
	return &pack, nil
}
