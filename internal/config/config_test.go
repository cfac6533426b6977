package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuschat/pkg/chattypes"
)

func loadForTest(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	s, err := Load()
	require.NoError(t, err)
	return s
}

func TestLoadDefaults(t *testing.T) {
	s := loadForTest(t)

	assert.Equal(t, GeneratorRemote, s.Generator)
	assert.Equal(t, ProviderGemini, s.Provider)
	assert.Equal(t, "campuschat.db", s.DBPath)
	assert.Equal(t, 50, s.HistoryLimit)
	assert.Equal(t, "http://localhost:8080/v1", s.LocalBaseURL)
	assert.Equal(t, 512, s.LocalMaxTokens)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CAMPUSCHAT_GENERATOR", "local")
	t.Setenv("CAMPUSCHAT_DB_PATH", "/tmp/chat-test.db")
	t.Setenv("CAMPUSCHAT_LOCAL_MODEL", "qwen2.5-0.5b-instruct")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	s := loadForTest(t)

	assert.Equal(t, GeneratorLocal, s.Generator)
	assert.Equal(t, "/tmp/chat-test.db", s.DBPath)
	assert.Equal(t, "qwen2.5-0.5b-instruct", s.LocalModel)
	assert.Equal(t, "test-gemini-key", s.GeminiAPIKey)
}

func TestSanitizeAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain key", "abc123def456", "abc123def456"},
		{"trailing comment", "abc123def456 # production key", "abc123def456"},
		{"double quoted", `"abc123def456"`, "abc123def456"},
		{"single quoted", "'abc123def456'", "abc123def456"},
		{"quoted with comment", `"abc123def456" # note`, "abc123def456"},
		{"surrounding whitespace", "  abc123def456  ", "abc123def456"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeAPIKey(tt.raw))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Settings)
		wantError bool
		component string
	}{
		{
			name:   "remote gemini with key",
			mutate: func(s *Settings) { s.GeminiAPIKey = "abc123def456" },
		},
		{
			name:      "remote gemini without key",
			mutate:    func(s *Settings) {},
			wantError: true,
			component: "gemini",
		},
		{
			name: "remote anthropic without key",
			mutate: func(s *Settings) {
				s.Provider = ProviderAnthropic
			},
			wantError: true,
			component: "anthropic",
		},
		{
			name: "unknown provider",
			mutate: func(s *Settings) {
				s.Provider = "cohere"
			},
			wantError: true,
			component: "cohere",
		},
		{
			name: "local with base URL",
			mutate: func(s *Settings) {
				s.Generator = GeneratorLocal
			},
		},
		{
			name: "local without base URL",
			mutate: func(s *Settings) {
				s.Generator = GeneratorLocal
				s.LocalBaseURL = ""
			},
			wantError: true,
			component: "local",
		},
		{
			name: "unknown generator",
			mutate: func(s *Settings) {
				s.Generator = "hybrid"
			},
			wantError: true,
			component: "hybrid",
		},
		{
			name: "non-positive history limit",
			mutate: func(s *Settings) {
				s.GeminiAPIKey = "abc123def456"
				s.HistoryLimit = 0
			},
			wantError: true,
			component: "history",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{
				Generator:    GeneratorRemote,
				Provider:     ProviderGemini,
				HistoryLimit: 50,
				LocalBaseURL: "http://localhost:8080/v1",
			}
			tt.mutate(s)

			err := s.Validate()
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}

			var confErr *chattypes.ConfigurationError
			require.True(t, errors.As(err, &confErr))
			assert.Equal(t, tt.component, confErr.Component)
		})
	}
}

func TestRemoteAPIKey(t *testing.T) {
	s := &Settings{
		Provider:        ProviderGemini,
		GeminiAPIKey:    "gemini-key",
		AnthropicAPIKey: "anthropic-key",
	}
	assert.Equal(t, "gemini-key", s.RemoteAPIKey())

	s.Provider = ProviderAnthropic
	assert.Equal(t, "anthropic-key", s.RemoteAPIKey())
}
