package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuschat/internal/store"
	"campuschat/pkg/chattypes"
)

type stubRemote struct {
	mu            sync.Mutex
	reply         string
	err           error
	calls         int
	lastHistories [][]chattypes.Turn
}

func (s *stubRemote) GenerateContent(_ context.Context, conversation []chattypes.Turn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastHistories = append(s.lastHistories, conversation)
	return s.reply, s.err
}

func (s *stubRemote) ProviderName() string { return "stub-remote" }
func (s *stubRemote) IsConfigured() bool   { return true }

type stubLocal struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubLocal) Load(_ context.Context) error { return nil }

func (s *stubLocal) GenerateText(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubLocal) ProviderName() string { return "stub-local" }

func newTestStore(t *testing.T) *store.MessageStore {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestNewRequiresExactlyOneGenerator(t *testing.T) {
	st := newTestStore(t)

	_, err := New(st, Options{})
	assert.Error(t, err)

	_, err = New(st, Options{Remote: &stubRemote{}, Local: &stubLocal{}})
	assert.Error(t, err)

	_, err = New(st, Options{Remote: &stubRemote{}})
	assert.NoError(t, err)
}

func TestRemoteTurnSuccess(t *testing.T) {
	st := newTestStore(t)
	remote := &stubRemote{reply: "The library opens at 9am."}
	orch, err := New(st, Options{Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	result, err := orch.OnUserMessage(ctx, "session-1", "When does the library open?")
	require.NoError(t, err)
	require.Empty(t, result.Warning)

	require.Len(t, result.Messages, 2)
	assert.Equal(t, chattypes.RoleUser, result.Messages[0].Role)
	assert.Equal(t, "When does the library open?", result.Messages[0].Content)
	assert.Equal(t, chattypes.RoleAssistant, result.Messages[1].Role)
	assert.Equal(t, "The library opens at 9am.", result.Messages[1].Content)

	// The generator saw the persona preamble ahead of the real history.
	require.Equal(t, 1, remote.calls)
	conversation := remote.lastHistories[0]
	require.Len(t, conversation, 3)
	assert.Equal(t, chattypes.TurnRoleUser, conversation[0].Role)
	assert.Equal(t, chattypes.TurnRoleModel, conversation[1].Role)
	assert.Equal(t, []string{"When does the library open?"}, conversation[2].Parts)

	// Both turns are durable.
	stored, err := st.Load(ctx, "session-1", 50)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGenerationFailureKeepsUserTurnOnly(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Seed one prior assistant message.
	_, err := st.Append(ctx, "session-1", chattypes.RoleUser, "Hi")
	require.NoError(t, err)
	_, err = st.Append(ctx, "session-1", chattypes.RoleAssistant, "Hello! How can I help?")
	require.NoError(t, err)

	remote := &stubRemote{err: &chattypes.GenerationError{Provider: "stub-remote", Err: errors.New("quota exceeded")}}
	orch, err := New(st, Options{Remote: remote})
	require.NoError(t, err)

	result, err := orch.OnUserMessage(ctx, "session-1", "What time is the library open?")
	require.NoError(t, err)
	assert.Equal(t, WarningText, result.Warning)

	stored, err := st.Load(ctx, "session-1", 50)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, chattypes.RoleAssistant, stored[1].Role)
	assert.Equal(t, chattypes.RoleUser, stored[2].Role)
	assert.Equal(t, "What time is the library open?", stored[2].Content)
}

func TestLocalPathSeesOnlyLatestUtterance(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Prior history exists but must not reach the local generator.
	_, err := st.Append(ctx, "session-1", chattypes.RoleUser, "Hi")
	require.NoError(t, err)
	_, err = st.Append(ctx, "session-1", chattypes.RoleAssistant, "Hello!")
	require.NoError(t, err)

	local := &stubLocal{reply: "Building C."}
	orch, err := New(st, Options{Local: local})
	require.NoError(t, err)

	result, err := orch.OnUserMessage(ctx, "session-1", "Where is the gym?")
	require.NoError(t, err)
	require.Empty(t, result.Warning)

	require.Len(t, local.prompts, 1)
	assert.Equal(t, "Where is the gym?", local.prompts[0])

	require.Len(t, result.Messages, 4)
	assert.Equal(t, "Building C.", result.Messages[3].Content)
}

func TestLocalGenerationFailure(t *testing.T) {
	st := newTestStore(t)
	local := &stubLocal{err: &chattypes.GenerationError{Provider: "stub-local", Err: errors.New("inference failed")}}
	orch, err := New(st, Options{Local: local})
	require.NoError(t, err)
	ctx := context.Background()

	result, err := orch.OnUserMessage(ctx, "session-1", "Where is the gym?")
	require.NoError(t, err)
	assert.Equal(t, WarningText, result.Warning)

	stored, err := st.Load(ctx, "session-1", 50)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, chattypes.RoleUser, stored[0].Role)
}

func TestEmptyUserMessageRejected(t *testing.T) {
	st := newTestStore(t)
	orch, err := New(st, Options{Remote: &stubRemote{reply: "hi"}})
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n"} {
		_, err := orch.OnUserMessage(context.Background(), "session-1", text)
		assert.Error(t, err)
	}

	stored, err := st.Load(context.Background(), "session-1", 50)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStorageFailureAbortsTurn(t *testing.T) {
	st := newTestStore(t)
	orch, err := New(st, Options{Remote: &stubRemote{reply: "hi"}})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = orch.OnUserMessage(context.Background(), "session-1", "Hello")
	var storageErr *chattypes.StorageError
	require.True(t, errors.As(err, &storageErr))
}

func TestSessionsAreIndependent(t *testing.T) {
	st := newTestStore(t)
	remote := &stubRemote{reply: "ok"}
	orch, err := New(st, Options{Remote: remote, HistoryLimit: 10})
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("session-%d", n)
			for j := 0; j < 3; j++ {
				_, err := orch.OnUserMessage(ctx, sessionID, fmt.Sprintf("question %d", j))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		sessionID := fmt.Sprintf("session-%d", i)
		msgs, err := st.Load(ctx, sessionID, 50)
		require.NoError(t, err)
		assert.Len(t, msgs, 6)
		for _, m := range msgs {
			assert.Equal(t, sessionID, m.SessionID)
		}
	}
}

func TestHistorySeedsUI(t *testing.T) {
	st := newTestStore(t)
	orch, err := New(st, Options{Remote: &stubRemote{reply: "ok"}, HistoryLimit: 2})
	require.NoError(t, err)
	ctx := context.Background()

	msgs, err := orch.History(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = orch.OnUserMessage(ctx, "session-1", "one")
	require.NoError(t, err)
	_, err = orch.OnUserMessage(ctx, "session-1", "two")
	require.NoError(t, err)

	msgs, err = orch.History(ctx, "session-1")
	require.NoError(t, err)
	// Window bounded to the two most recent messages.
	require.Len(t, msgs, 2)
	assert.Equal(t, chattypes.RoleAssistant, msgs[1].Role)
}
