// Package llm provides the Gemini client and the generation collaborator that turns a job record
// into an untrusted tailored résumé.
package llm

// ModelTier selects a model by cost and capability
type ModelTier string

const (
	// TierLite is for cheap auxiliary calls
	TierLite ModelTier = "lite"
	// TierStandard tailors résumés
	TierStandard ModelTier = "standard"
	// TierAdvanced is available for operators who trade cost for quality
	TierAdvanced ModelTier = "advanced"
)

// Provider names a model provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Generation defaults. A full résumé plus the apply-pack fields fits well under the token cap.
const (
	DefaultTemperature     float32 = 0.2
	DefaultMaxOutputTokens int32   = 16384
)

// Config holds the model selection for a client
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// ForModel returns the default configuration with the tailoring tier set to model.
// An empty model keeps the default.
func ForModel(model string) *Config {
	cfg := DefaultConfig()
	if model != "" {
		cfg.Models[TierStandard] = model
	}
	return cfg
}

// GetModel returns the model for a tier, falling back to the standard tier and then the lite
// tier. It returns "" when nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok && model != "" {
			return model
		}
	}
	return ""
}
