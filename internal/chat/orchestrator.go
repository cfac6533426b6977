// Package chat runs the per-session conversation turn loop: persist the user
// utterance, shape the history, invoke the selected generator, persist its
// reply. The message store stays authoritative; generation failures degrade
// to a user-visible warning and never leave partial turns behind.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"campuschat/internal/history"
	"campuschat/internal/logger"
	"campuschat/internal/store"
	"campuschat/pkg/chattypes"
)

// WarningText is shown to the user when a generator fails. No assistant
// message is persisted for the failed turn.
const WarningText = "Sorry, I couldn't generate a response."

// turnState tracks where a session is in its turn cycle.
type turnState int

const (
	stateIdle turnState = iota
	stateGenerating
)

// session serializes turns: at most one is in flight per session, while
// distinct sessions proceed independently.
type session struct {
	mu    sync.Mutex
	state turnState
}

// Options selects exactly one generator variant and the history window size.
type Options struct {
	Remote       chattypes.RemoteGenerator
	Local        chattypes.LocalGenerator
	HistoryLimit int
}

// Orchestrator drives conversation turns against the message store and a
// generator handed in at construction time and reused for all sessions.
type Orchestrator struct {
	store  *store.MessageStore
	remote chattypes.RemoteGenerator
	local  chattypes.LocalGenerator
	limit  int

	mu       sync.Mutex
	sessions map[string]*session
}

// New constructs an orchestrator. Exactly one of Options.Remote and
// Options.Local must be set.
func New(st *store.MessageStore, opts Options) (*Orchestrator, error) {
	if (opts.Remote == nil) == (opts.Local == nil) {
		return nil, fmt.Errorf("chat: exactly one generator must be configured")
	}

	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}

	return &Orchestrator{
		store:    st,
		remote:   opts.Remote,
		local:    opts.Local,
		limit:    limit,
		sessions: make(map[string]*session),
	}, nil
}

// GeneratorName returns the active generator's provider name.
func (o *Orchestrator) GeneratorName() string {
	if o.remote != nil {
		return o.remote.ProviderName()
	}
	return o.local.ProviderName()
}

// TurnResult is what the UI renders after a turn: the displayable history
// window and an optional warning when generation failed.
type TurnResult struct {
	Messages []chattypes.Message
	Warning  string
}

// History returns the displayable window for a session, for seeding the UI at
// session start.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]chattypes.Message, error) {
	return o.store.Load(ctx, sessionID, o.limit)
}

// OnUserMessage runs one synchronous conversation turn end to end. The user
// message is always persisted; the assistant message only on successful
// generation. A generation failure yields a TurnResult carrying WarningText.
// Storage failures abort the turn and are returned as errors.
func (o *Orchestrator) OnUserMessage(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chat: empty user message")
	}

	sess := o.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state = stateGenerating
	defer func() { sess.state = stateIdle }()

	if _, err := o.store.Append(ctx, sessionID, chattypes.RoleUser, text); err != nil {
		return nil, err
	}

	reply, genErr := o.generate(ctx, sessionID, text)
	if genErr != nil {
		var generationErr *chattypes.GenerationError
		if !errors.As(genErr, &generationErr) {
			// Not a generator failure (e.g. storage broke while reading
			// history): abort the turn instead of warning.
			return nil, genErr
		}
	}

	if genErr == nil && reply != "" {
		if _, err := o.store.Append(ctx, sessionID, chattypes.RoleAssistant, reply); err != nil {
			return nil, err
		}
	}

	msgs, err := o.store.Load(ctx, sessionID, o.limit)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{Messages: msgs}
	if genErr != nil {
		logger.Warn("generation failed", "session", sessionID, "provider", o.GeneratorName(), "error", genErr)
		result.Warning = WarningText
	}
	return result, nil
}

// generate obtains the adapted input for the active generator and invokes
// it. An empty reply with a nil error means there was nothing to generate.
func (o *Orchestrator) generate(ctx context.Context, sessionID, text string) (string, error) {
	if o.local != nil {
		prompt, err := history.ForLocal(text)
		if err != nil {
			return "", &chattypes.GenerationError{Provider: o.local.ProviderName(), Err: err}
		}
		return o.local.GenerateText(ctx, prompt)
	}

	msgs, err := o.store.Load(ctx, sessionID, o.limit)
	if err != nil {
		return "", err
	}

	turns, err := history.ForRemote(msgs)
	if errors.Is(err, history.ErrNothingToGenerate) {
		return "", nil
	}
	if err != nil {
		return "", &chattypes.GenerationError{Provider: o.remote.ProviderName(), Err: err}
	}

	return o.remote.GenerateContent(ctx, turns)
}

func (o *Orchestrator) session(id string) *session {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sessions[id]
	if !ok {
		s = &session{}
		o.sessions[id] = s
	}
	return s
}
