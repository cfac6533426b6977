// This file contains the response generator abstractions. Generators are
// constructed once at process start, handed to the orchestrator, and reused
// for all sessions.
package chattypes

import "context"

// Turn role tags in the remote generator's vocabulary. The history adapter
// maps stored roles onto these; each client maps them onto its own SDK.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// Turn is one entry of the adapted conversation handed to a remote generator.
type Turn struct {
	Role  string
	Parts []string
}

// RemoteGenerator is a stateless hosted-model generator: ordered adapted
// history in, generated text out. Request failures surface as
// *GenerationError.
type RemoteGenerator interface {
	// GenerateContent sends the adapted conversation and returns the reply text.
	GenerateContent(ctx context.Context, conversation []Turn) (string, error)

	// ProviderName returns the provider name (e.g. "gemini", "anthropic").
	ProviderName() string

	// IsConfigured returns true if the client has valid credentials.
	IsConfigured() bool
}

// LocalGenerator is a locally served model generator. After a one-time Load
// it maps a single prompt string to generated text; it deliberately never
// sees prior turns.
type LocalGenerator interface {
	// Load performs the one-time startup verification of the local model.
	// Failures are *ConfigurationError so callers can fall back to a remote
	// generator instead of crashing the session.
	Load(ctx context.Context) error

	// GenerateText maps one prompt string to generated text.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// ProviderName returns the provider name ("local").
	ProviderName() string
}
