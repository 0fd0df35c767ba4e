// Package llm holds the model configuration and client abstraction shared
// by every completion-calling stage.
package llm

import "maps"

// ModelTier selects how much reasoning capability a call needs. Stages pick
// a tier instead of a concrete model name so the mapping stays in one place.
type ModelTier string

const (
	// TierLite covers cheap extraction work like theme mining.
	TierLite ModelTier = "lite"
	// TierStandard covers structured scoring and action derivation.
	TierStandard ModelTier = "standard"
	// TierAdvanced covers framework assessment and report narrative.
	TierAdvanced ModelTier = "advanced"
)

// Provider identifies an LLM backend.
type Provider string

const (
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is reserved for a future OpenAI backend.
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is reserved for a future Anthropic backend.
	ProviderAnthropic Provider = "anthropic"
)

// Config maps model tiers to provider model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// fallbackOrder is tried in sequence when a tier has no model configured.
var fallbackOrder = []ModelTier{TierStandard, TierLite}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig maps the three tiers onto the Gemini model family.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel resolves a tier to a model name, degrading through cheaper tiers
// when the requested one is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, fallback := range fallbackOrder {
		if model, ok := c.Models[fallback]; ok {
			return model
		}
	}
	return ""
}

// WithModel derives a copy of the config with one tier overridden. The
// receiver is left untouched.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	derived := &Config{
		Provider: c.Provider,
		Models:   maps.Clone(c.Models),
	}
	if derived.Models == nil {
		derived.Models = make(map[ModelTier]string, 1)
	}
	derived.Models[tier] = model
	return derived
}
