package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names for generation client selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// FactoryConfig selects and configures the generation provider. The
// embedding client is always the OpenAI-compatible one; only generation is
// switchable.
type FactoryConfig struct {
	Provider string // "openai" (default) or "anthropic"

	OpenAI    Config
	Anthropic AnthropicConfig
}

// NewGenerationClient creates the configured generation client.
func NewGenerationClient(cfg *FactoryConfig, logger *zap.Logger) (GenerationClient, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewClient(&cfg.OpenAI, logger)
	case ProviderAnthropic:
		if cfg.Anthropic.Model == "" {
			return nil, fmt.Errorf("anthropic model is required")
		}
		return NewAnthropicClient(&cfg.Anthropic, logger), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
