package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"campuschat/internal/logger"
	"campuschat/pkg/chattypes"
)

// LocalClient implements chattypes.LocalGenerator against a locally hosted
// OpenAI-compatible inference server (a llama-server or Ollama style endpoint
// serving a fine-tuned model). The model weights are loaded and owned by that
// server; Load verifies once at startup that the server is reachable and
// serves the configured model.
type LocalClient struct {
	baseURL   string
	model     string
	maxTokens int
	client    *openai.Client
	loaded    bool
}

// NewLocalClient creates a local client for the given inference endpoint.
func NewLocalClient(baseURL, model string, maxTokens int) *LocalClient {
	return &LocalClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
	}
}

// ProviderName returns the provider name for this client.
func (c *LocalClient) ProviderName() string {
	return "local"
}

// Load performs the one-time startup check. Failures are
// *chattypes.ConfigurationError so the caller can fall back to a remote
// generator instead of crashing the session.
func (c *LocalClient) Load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	if c.baseURL == "" || c.model == "" {
		return &chattypes.ConfigurationError{Component: "local", Err: fmt.Errorf("base URL and model are required")}
	}

	client := openai.NewClient(
		// The SDK resolves request paths against the base URL, so it must end
		// with a slash.
		option.WithBaseURL(c.baseURL+"/"),
		// Local servers ignore the credential but the SDK requires one.
		option.WithAPIKey("local"),
	)

	page, err := client.Models.List(ctx)
	if err != nil {
		return &chattypes.ConfigurationError{Component: "local", Err: fmt.Errorf("inference server unreachable at %s: %w", c.baseURL, err)}
	}

	found := false
	for _, m := range page.Data {
		if m.ID == c.model {
			found = true
			break
		}
	}
	if !found {
		return &chattypes.ConfigurationError{Component: "local", Err: fmt.Errorf("model %s not served at %s", c.model, c.baseURL)}
	}

	c.client = &client
	c.loaded = true
	logger.Debug("local model verified", "model", c.model, "base_url", c.baseURL)
	return nil
}

// GenerateText maps one prompt string to generated text. The reply is bounded
// by the configured output budget and stripped of any echoed prompt prefix.
func (c *LocalClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !c.loaded {
		return "", &chattypes.GenerationError{Provider: "local", Err: fmt.Errorf("local client not loaded")}
	}

	logger.Debug("local generation starting", "model", c.model, "prompt_length", len(prompt))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("local generation failed", "error", err)
		return "", &chattypes.GenerationError{Provider: "local", Err: err}
	}

	if len(completion.Choices) == 0 {
		return "", &chattypes.GenerationError{Provider: "local", Err: fmt.Errorf("no response choices returned")}
	}

	content := stripEchoedPrompt(completion.Choices[0].Message.Content, prompt)
	if content == "" {
		return "", &chattypes.GenerationError{Provider: "local", Err: fmt.Errorf("empty response content")}
	}

	logger.Debug("local response received", "content_length", len(content))
	return content, nil
}

// stripEchoedPrompt removes a leading copy of the prompt. Base models behind
// completion-style servers tend to echo their input ahead of the reply.
func stripEchoedPrompt(output, prompt string) string {
	return strings.TrimSpace(strings.TrimPrefix(output, prompt))
}
