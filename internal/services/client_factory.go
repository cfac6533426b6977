package services

import (
	"fmt"

	"campuschat/internal/catalog"
	"campuschat/internal/config"
	"campuschat/pkg/chattypes"
)

// NewRemoteGenerator constructs the remote generator for the configured
// provider. Provider selection happens once here, at construction time, so no
// provider branching leaks into the turn loop.
func NewRemoteGenerator(cfg *config.Settings, cat *catalog.Catalog) (chattypes.RemoteGenerator, error) {
	model := cfg.RemoteModel
	maxTokens := 0
	if entry, ok := cat.Lookup(cfg.Provider); ok {
		if model == "" {
			model = entry.DefaultModel
		}
		maxTokens = entry.MaxOutputTokens
	}
	if model == "" {
		return nil, &chattypes.ConfigurationError{Component: cfg.Provider, Err: fmt.Errorf("no model configured and none in catalog")}
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, &chattypes.ConfigurationError{Component: config.ProviderGemini, Err: fmt.Errorf("GEMINI_API_KEY not set")}
		}
		return NewGeminiClient(cfg.GeminiAPIKey, model, maxTokens), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, &chattypes.ConfigurationError{Component: config.ProviderAnthropic, Err: fmt.Errorf("ANTHROPIC_API_KEY not set")}
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey, model, maxTokens), nil
	default:
		return nil, &chattypes.ConfigurationError{Component: cfg.Provider, Err: fmt.Errorf("unknown remote provider")}
	}
}

// NewLocalGenerator constructs the local generator from configuration,
// falling back to catalog defaults for the model and output budget. The
// returned client still needs a one-time Load before its first turn.
func NewLocalGenerator(cfg *config.Settings, cat *catalog.Catalog) chattypes.LocalGenerator {
	model := cfg.LocalModel
	maxTokens := cfg.LocalMaxTokens
	if entry, ok := cat.Lookup("local"); ok {
		if model == "" {
			model = entry.DefaultModel
		}
		if maxTokens <= 0 {
			maxTokens = entry.MaxOutputTokens
		}
	}
	return NewLocalClient(cfg.LocalBaseURL, model, maxTokens)
}
