// Package history shapes persisted conversation turns into the input shape a
// response generator expects. Nothing here mutates the stored log.
package history

import (
	"errors"
	"fmt"
	"strings"

	"campuschat/pkg/chattypes"
)

// The persona preamble: two synthetic turns prepended ahead of the real
// history to steer the remote model. Never persisted.
const (
	personaInstruction = `You are a friendly and helpful AI assistant for university students.
Answer student questions and provide help on topics such as campus life,
academic information and campus facilities. Always use polite and clear language.`

	personaAcknowledgment = "Hello! I am the campus assistant. How can I help you today?"
)

// ErrNothingToGenerate is returned by ForRemote when the history already ends
// with an assistant turn, meaning there is no pending user utterance to
// answer. Callers must treat it as a legitimate no-op, not a failure.
var ErrNothingToGenerate = errors.New("history: nothing to generate")

// ForRemote shapes an ordered history for a remote generator: the persona
// preamble first, then every stored turn mapped into the generator's role
// vocabulary (user stays user, assistant becomes model).
func ForRemote(msgs []chattypes.Message) ([]chattypes.Turn, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("history: empty history, a pending user turn is required")
	}
	if msgs[len(msgs)-1].Role == chattypes.RoleAssistant {
		return nil, ErrNothingToGenerate
	}

	turns := make([]chattypes.Turn, 0, len(msgs)+2)
	turns = append(turns,
		chattypes.Turn{Role: chattypes.TurnRoleUser, Parts: []string{personaInstruction}},
		chattypes.Turn{Role: chattypes.TurnRoleModel, Parts: []string{personaAcknowledgment}},
	)

	for _, m := range msgs {
		role := chattypes.TurnRoleUser
		if m.Role == chattypes.RoleAssistant {
			role = chattypes.TurnRoleModel
		}
		turns = append(turns, chattypes.Turn{Role: role, Parts: []string{m.Content}})
	}

	return turns, nil
}

// ForLocal builds the prompt for the local generator from the latest user
// utterance alone. The local path is deliberately turn-by-turn: it never sees
// prior history, so its conversational memory is bounded to one exchange.
func ForLocal(userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("history: empty user utterance")
	}
	return userText, nil
}
