package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/models"
)

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	_, err := s.Get(ctx, "v:a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	state := models.NewConversationState("hello")
	state.QuestionsAsked = 2
	require.NoError(t, s.Set(ctx, "v:a1", state))

	got, err := s.Get(ctx, "v:a1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	require.NoError(t, s.Delete(ctx, "v:a1"))
	_, err = s.Get(ctx, "v:a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemorySessionStore_ReturnsDetachedCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	require.NoError(t, s.Set(ctx, "k", models.NewConversationState("seed")))

	first, err := s.Get(ctx, "k")
	require.NoError(t, err)
	first.History = append(first.History, models.Message{Role: models.RoleUser, Content: "mutation"})
	first.History[0].Content = "overwritten"

	second, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, second.History, 1)
	assert.Equal(t, "seed", second.History[0].Content)
}
