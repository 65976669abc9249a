package services

import (
	"context"
	"sync"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// SessionStore persists conversation state keyed by (session, artwork).
// Implementations own expiry; the conversation service never reasons
// about session lifetime.
type SessionStore interface {
	// Get returns the stored state, or apperrors.ErrNotFound.
	Get(ctx context.Context, key string) (*models.ConversationState, error)
	Set(ctx context.Context, key string, state *models.ConversationState) error
	Delete(ctx context.Context, key string) error
}

// MemorySessionStore is the in-process store used in tests and local
// runs without Redis. States never expire.
type MemorySessionStore struct {
	mu     sync.RWMutex
	states map[string]models.ConversationState
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{states: make(map[string]models.ConversationState)}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyState(&state), nil
}

func (s *MemorySessionStore) Set(_ context.Context, key string, state *models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = *copyState(state)
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

// copyState detaches the history slice so callers cannot mutate stored
// state through a returned pointer.
func copyState(state *models.ConversationState) *models.ConversationState {
	out := &models.ConversationState{
		History:        make([]models.Message, len(state.History)),
		QuestionsAsked: state.QuestionsAsked,
	}
	copy(out.History, state.History)
	return out
}
