// Package llm provides the generative-inference client used by the
// extraction, matching and grading pipelines.
package llm

// ModelTier represents the complexity/capability level of a model.
type ModelTier string

const (
	// TierLite is for simple tasks: topic tagging, confidence filtering.
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction: DNA, job descriptions.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for scoring and rewriting: match scores, beautified JDs.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model configuration for the service.
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini model configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		// Low temperature for consistent structured output.
		Temperature: 0.1,
	}
}

// GetModel returns the model name for a given tier, falling back to the
// standard tier, then lite, when the tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := &Config{
		Models:      make(map[ModelTier]string, len(c.Models)),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	cp.Models[tier] = model
	return cp
}
