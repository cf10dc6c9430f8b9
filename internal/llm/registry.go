package llm

import (
	"fmt"

	"github.com/weavecli/weave/internal/config"
)

// NewProvider constructs the named provider from config. An empty name
// selects the configured default.
func NewProvider(cfg *config.Config, name string) (Provider, error) {
	if name == "" {
		name = cfg.Provider
	}

	switch name {
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured (set ANTHROPIC_API_KEY or anthropic.api_key)")
		}
		return NewAnthropicProvider(cfg.Anthropic.APIKey), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai API key not configured (set OPENAI_API_KEY or openai.api_key)")
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured (set GEMINI_API_KEY or gemini.api_key)")
		}
		return NewGeminiProvider(cfg.Gemini.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected anthropic, openai, or gemini)", name)
	}
}

// DefaultModel returns the configured model for the named provider.
func DefaultModel(cfg *config.Config, name string) string {
	if name == "" {
		name = cfg.Provider
	}
	switch name {
	case "openai":
		return cfg.OpenAI.Model
	case "gemini":
		return cfg.Gemini.Model
	default:
		return cfg.Anthropic.Model
	}
}
