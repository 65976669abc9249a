package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/catalog"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
)

type stubRetriever struct {
	retrieved string
	err       error
	lastQuery string
}

func (r *stubRetriever) Retrieve(_ context.Context, query, _, _ string, _ int) (string, error) {
	r.lastQuery = query
	return r.retrieved, r.err
}

type stubSampler struct {
	exemplars []string
	err       error
}

func (s *stubSampler) Sample(_ string, _ int) ([]string, error) {
	return s.exemplars, s.err
}

type stubMetadata struct {
	meta models.CachedMetadata
}

func (m *stubMetadata) Metadata(_ context.Context, _ string) models.CachedMetadata {
	return m.meta
}

type fixture struct {
	svc       *ConversationService
	generator *llm.MockClient
	retriever *stubRetriever
	sessions  *MemorySessionStore
}

func newFixture(t *testing.T, cfg ConversationConfig) *fixture {
	t.Helper()

	cat, err := catalog.New([]models.Artwork{{
		ID:             "sk-c-5",
		Title:          "The Night Watch",
		Artist:         "Rembrandt van Rijn",
		InitialMessage: "Step into the light.",
		SystemPrompt:   "You are The Night Watch.",
	}})
	require.NoError(t, err)

	title := "The Night Watch"
	generator := &llm.MockClient{
		GenerateConversationFunc: func(_ context.Context, _ []models.Message) (string, error) {
			return "a painted reply", nil
		},
	}
	retriever := &stubRetriever{retrieved: "background passage"}
	sessions := NewMemorySessionStore()

	svc := NewConversationService(
		cat,
		sessions,
		generator,
		retriever,
		&stubSampler{exemplars: []string{"an exemplar"}},
		&stubMetadata{meta: models.CachedMetadata{
			ObjectNumber: "SK-C-5",
			Facts:        models.FactRecord{Title: &title},
		}},
		cfg,
		zap.NewNop(),
	)
	return &fixture{svc: svc, generator: generator, retriever: retriever, sessions: sessions}
}

func TestAsk_HappyPath(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})

	result, err := f.svc.Ask(context.Background(), "visitor-1", "sk-c-5", "Why so dark?")
	require.NoError(t, err)

	assert.Equal(t, "a painted reply", result.Reply)
	assert.Equal(t, 4, result.QuestionsRemaining)
	assert.False(t, result.LimitReached)
	assert.Equal(t, "Why so dark?", f.retriever.lastQuery)

	state, err := f.svc.State(context.Background(), "visitor-1", "sk-c-5")
	require.NoError(t, err)
	require.Len(t, state.History, 3) // seed, user, assistant
	assert.Equal(t, models.RoleUser, state.History[1].Role)
	assert.Equal(t, models.RoleAssistant, state.History[2].Role)
}

func TestAsk_PromptAssemblyOrder(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})

	_, err := f.svc.Ask(context.Background(), "v", "sk-c-5", "Why so dark?")
	require.NoError(t, err)

	msgs := f.generator.LastMessages
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are The Night Watch.", msgs[0].Content)
	assert.Equal(t, models.RoleDeveloper, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "MUSEUM METADATA")
	assert.Contains(t, msgs[1].Content, "an exemplar")
	assert.Contains(t, msgs[1].Content, "background passage")
	assert.Equal(t, models.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "Step into the light.", msgs[2].Content)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "Why so dark?"}, msgs[3])
}

func TestAsk_QuotaEnforced(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := f.svc.Ask(ctx, "v", "sk-c-5", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
		if i == 1 {
			assert.True(t, result.LimitReached)
			assert.Zero(t, result.QuestionsRemaining)
		}
	}

	generationsBefore := f.generator.GenerateConversationCalls

	_, err := f.svc.Ask(ctx, "v", "sk-c-5", "one too many")
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)

	// The rejected question never reaches the model and never enters the
	// history.
	assert.Equal(t, generationsBefore, f.generator.GenerateConversationCalls)
	state, err := f.svc.State(ctx, "v", "sk-c-5")
	require.NoError(t, err)
	for _, m := range state.History {
		assert.NotEqual(t, "one too many", m.Content)
	}
}

func TestAsk_GenerationFailureKeepsQuestion(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})
	f.generator.GenerateConversationFunc = func(_ context.Context, _ []models.Message) (string, error) {
		return "", errors.New("model down")
	}

	_, err := f.svc.Ask(context.Background(), "v", "sk-c-5", "Why so dark?")
	require.Error(t, err)

	state, err := f.svc.State(context.Background(), "v", "sk-c-5")
	require.NoError(t, err)
	require.Len(t, state.History, 2)
	assert.Equal(t, models.RoleUser, state.History[1].Role)
	// The failed turn does not consume quota.
	assert.Equal(t, 5, state.QuestionsRemaining)
}

func TestAsk_RetrievalFailureDoesNotCallModel(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})
	f.retriever.err = errors.New("store down")

	_, err := f.svc.Ask(context.Background(), "v", "sk-c-5", "q")
	assert.ErrorContains(t, err, "retrieving context")
	assert.Zero(t, f.generator.GenerateConversationCalls)
}

func TestAsk_UnknownArtwork(t *testing.T) {
	f := newFixture(t, ConversationConfig{})

	_, err := f.svc.Ask(context.Background(), "v", "nope", "q")
	assert.ErrorIs(t, err, apperrors.ErrArtworkNotFound)
}

func TestReset_RestoresSeedState(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 2})
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, "v", "sk-c-5", "q1")
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, "v", "sk-c-5", "q2")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx, "v", "sk-c-5"))

	state, err := f.svc.State(ctx, "v", "sk-c-5")
	require.NoError(t, err)
	require.Len(t, state.History, 1)
	assert.Equal(t, models.RoleAssistant, state.History[0].Role)
	assert.Equal(t, "Step into the light.", state.History[0].Content)
	assert.Equal(t, 2, state.QuestionsRemaining)
	assert.False(t, state.LimitReached)

	// And the quota is genuinely available again.
	_, err = f.svc.Ask(ctx, "v", "sk-c-5", "fresh question")
	assert.NoError(t, err)
}

func TestState_FreshConversation(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})

	state, err := f.svc.State(context.Background(), "new-visitor", "sk-c-5")
	require.NoError(t, err)
	require.Len(t, state.History, 1)
	assert.Equal(t, "Step into the light.", state.History[0].Content)
	assert.Equal(t, 5, state.QuestionsRemaining)
}

func TestAsk_SamplerFailureTolerated(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 5})
	f.svc.sampler = &stubSampler{err: apperrors.ErrUnknownPersona}

	result, err := f.svc.Ask(context.Background(), "v", "sk-c-5", "q")
	require.NoError(t, err)
	assert.Equal(t, "a painted reply", result.Reply)
}

func TestAsk_SessionsIsolated(t *testing.T) {
	f := newFixture(t, ConversationConfig{MaxQuestions: 1})
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, "alice", "sk-c-5", "q")
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, "alice", "sk-c-5", "q2")
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)

	// A different visitor has their own quota.
	_, err = f.svc.Ask(ctx, "bob", "sk-c-5", "q")
	assert.NoError(t, err)
}
