package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"campuschat/internal/logger"
	"campuschat/pkg/chattypes"
)

// defaultAnthropicMaxTokens applies when no output budget is configured; the
// Anthropic API requires an explicit max_tokens on every request.
const defaultAnthropicMaxTokens = 1024

// AnthropicClient implements chattypes.RemoteGenerator against the Anthropic
// API. The underlying SDK client is constructed lazily on the first request.
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int
	client    *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey, model string, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// ProviderName returns the provider name for this client.
func (c *AnthropicClient) ProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has an API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return &chattypes.ConfigurationError{Component: "anthropic", Err: fmt.Errorf("API key not configured")}
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client

	logger.Debug("anthropic client initialized", "provider", "anthropic")
	return nil
}

// GenerateContent sends the adapted conversation to Anthropic and returns the
// generated text. The adapter's model role tag maps onto the SDK's assistant
// message.
func (c *AnthropicClient) GenerateContent(ctx context.Context, conversation []chattypes.Turn) (string, error) {
	logger.Debug("anthropic generation starting", "model", c.model, "turns", len(conversation))

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", err
	}

	messages := convertTurnsToAnthropic(conversation)

	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("anthropic request failed", "error", err)
		return "", &chattypes.GenerationError{Provider: "anthropic", Err: err}
	}

	var content strings.Builder
	for _, block := range message.Content {
		content.WriteString(block.Text)
	}

	if content.Len() == 0 {
		logger.Error("empty anthropic response content")
		return "", &chattypes.GenerationError{Provider: "anthropic", Err: fmt.Errorf("empty response content")}
	}

	logger.Debug("anthropic response received", "content_length", content.Len())
	return content.String(), nil
}

// convertTurnsToAnthropic maps adapted turns onto the SDK's message types.
func convertTurnsToAnthropic(conversation []chattypes.Turn) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(conversation))
	for _, turn := range conversation {
		text := strings.Join(turn.Parts, "\n")
		switch turn.Role {
		case chattypes.TurnRoleModel:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return messages
}
