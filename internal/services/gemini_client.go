// Package services provides the response generator clients for campuschat.
package services

import (
	"context"
	"fmt"
	"strings"

	"campuschat/internal/logger"
	"campuschat/pkg/chattypes"

	"google.golang.org/genai"
)

// GeminiClient implements chattypes.RemoteGenerator against the Google Gemini
// API. The underlying SDK client is constructed lazily on the first request.
type GeminiClient struct {
	apiKey    string
	model     string
	maxTokens int
	client    *genai.Client
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
func NewGeminiClient(apiKey, model string, maxTokens int) *GeminiClient {
	return &GeminiClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// ProviderName returns the provider name for this client.
func (c *GeminiClient) ProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has an API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return &chattypes.ConfigurationError{Component: "gemini", Err: fmt.Errorf("API key not configured")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.apiKey})
	if err != nil {
		return &chattypes.ConfigurationError{Component: "gemini", Err: fmt.Errorf("create client: %w", err)}
	}

	c.client = client
	logger.Debug("gemini client initialized", "provider", "gemini")
	return nil
}

// GenerateContent sends the adapted conversation to Gemini and returns the
// generated text. Request failures and empty model output surface as
// *chattypes.GenerationError.
func (c *GeminiClient) GenerateContent(ctx context.Context, conversation []chattypes.Turn) (string, error) {
	logger.Debug("gemini generation starting", "model", c.model, "turns", len(conversation))

	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return "", err
	}

	contents := convertTurnsToGemini(conversation)

	config := &genai.GenerateContentConfig{}
	if c.maxTokens > 0 {
		config.MaxOutputTokens = int32(c.maxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		logger.Error("gemini request failed", "error", err)
		return "", &chattypes.GenerationError{Provider: "gemini", Err: err}
	}

	content := collectGeminiText(result)
	if content == "" {
		logger.Error("empty gemini response content")
		return "", &chattypes.GenerationError{Provider: "gemini", Err: fmt.Errorf("empty response content")}
	}

	logger.Debug("gemini response received", "content_length", len(content))
	return content, nil
}

// convertTurnsToGemini maps adapted turns onto the SDK's content type. The
// history adapter already speaks Gemini's role vocabulary (user/model), so
// roles pass through unchanged.
func convertTurnsToGemini(conversation []chattypes.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conversation))
	for _, turn := range conversation {
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			parts = append(parts, &genai.Part{Text: p})
		}
		contents = append(contents, &genai.Content{
			Role:  turn.Role,
			Parts: parts,
		})
	}
	return contents
}

// collectGeminiText concatenates the text parts of all candidates, skipping
// thought parts.
func collectGeminiText(result *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
