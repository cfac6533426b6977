// Package config resolves campuschat process configuration.
// Priority (highest to lowest): CLI flags > environment variables > .env file > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"campuschat/pkg/chattypes"
)

// Generator selection values.
const (
	GeneratorRemote = "remote"
	GeneratorLocal  = "local"
)

// Remote provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Settings holds the resolved process configuration.
type Settings struct {
	Generator string // GeneratorRemote or GeneratorLocal
	Provider  string // remote provider name

	GeminiAPIKey    string
	AnthropicAPIKey string

	DBPath       string
	HistoryLimit int

	// RemoteModel overrides the catalog default for the remote provider.
	RemoteModel string

	LocalBaseURL   string
	LocalModel     string
	LocalMaxTokens int
}

// Load resolves configuration from flags bound to viper, the environment and
// an optional local .env file.
func Load() (*Settings, error) {
	// A missing .env is not an error; deployments may configure the
	// environment directly.
	_ = godotenv.Load()

	viper.SetEnvPrefix("CAMPUSCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("generator", GeneratorRemote)
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("db-path", "campuschat.db")
	viper.SetDefault("history-limit", 50)
	viper.SetDefault("local.base-url", "http://localhost:8080/v1")
	viper.SetDefault("local.max-tokens", 512)

	// API keys keep their conventional unprefixed names.
	if err := viper.BindEnv("gemini-api-key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind GEMINI_API_KEY: %w", err)
	}
	if err := viper.BindEnv("anthropic-api-key", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind ANTHROPIC_API_KEY: %w", err)
	}

	s := &Settings{
		Generator:       strings.ToLower(viper.GetString("generator")),
		Provider:        strings.ToLower(viper.GetString("provider")),
		GeminiAPIKey:    sanitizeAPIKey(viper.GetString("gemini-api-key")),
		AnthropicAPIKey: sanitizeAPIKey(viper.GetString("anthropic-api-key")),
		DBPath:          viper.GetString("db-path"),
		HistoryLimit:    viper.GetInt("history-limit"),
		RemoteModel:     viper.GetString("remote-model"),
		LocalBaseURL:    viper.GetString("local.base-url"),
		LocalModel:      viper.GetString("local.model"),
		LocalMaxTokens:  viper.GetInt("local.max-tokens"),
	}

	return s, nil
}

// sanitizeAPIKey strips inline comments and surrounding quotes that leak in
// from hand-edited .env files (KEY="abc" # note).
func sanitizeAPIKey(raw string) string {
	key := raw
	if i := strings.Index(key, "#"); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"'`)
	return key
}

// RemoteAPIKey returns the credential for the configured remote provider.
func (s *Settings) RemoteAPIKey() string {
	switch s.Provider {
	case ProviderAnthropic:
		return s.AnthropicAPIKey
	default:
		return s.GeminiAPIKey
	}
}

// Validate checks that the selected generator can actually run. Failures are
// *chattypes.ConfigurationError and are fatal only for the affected generator.
func (s *Settings) Validate() error {
	switch s.Generator {
	case GeneratorRemote:
		switch s.Provider {
		case ProviderGemini:
			if s.GeminiAPIKey == "" {
				return &chattypes.ConfigurationError{Component: ProviderGemini, Err: errors.New("GEMINI_API_KEY not set")}
			}
		case ProviderAnthropic:
			if s.AnthropicAPIKey == "" {
				return &chattypes.ConfigurationError{Component: ProviderAnthropic, Err: errors.New("ANTHROPIC_API_KEY not set")}
			}
		default:
			return &chattypes.ConfigurationError{Component: s.Provider, Err: errors.New("unknown remote provider")}
		}
	case GeneratorLocal:
		if s.LocalBaseURL == "" {
			return &chattypes.ConfigurationError{Component: "local", Err: errors.New("local base URL not set")}
		}
	default:
		return &chattypes.ConfigurationError{Component: s.Generator, Err: errors.New("unknown generator, expected remote or local")}
	}

	if s.HistoryLimit <= 0 {
		return &chattypes.ConfigurationError{Component: "history", Err: errors.New("history limit must be positive")}
	}

	return nil
}
