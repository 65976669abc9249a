// Package services holds the orchestration layer: the conversation
// state machine and the corpus indexer.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/catalog"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/prompts"
)

// DefaultMaxQuestions is the per-conversation quota when none is
// configured.
const DefaultMaxQuestions = 5

// ContextRetriever is the slice of the retriever the conversation
// service depends on.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, creator, paintingID string, k int) (string, error)
}

// ExemplarSampler yields style exemplars for a persona.
type ExemplarSampler interface {
	Sample(persona string, k int) ([]string, error)
}

// MetadataSource yields the grounding facts for an artwork. Never
// fails; an unknown artwork or a dead upstream yields an empty record.
type MetadataSource interface {
	Metadata(ctx context.Context, artworkID string) models.CachedMetadata
}

// ConversationConfig tunes a conversation service.
type ConversationConfig struct {
	MaxQuestions  int
	StyleExamples int
	RetrievalTopK int
}

// TurnResult is the outcome of one successful conversation turn.
type TurnResult struct {
	Reply              string
	QuestionsRemaining int
	LimitReached       bool
}

// StateView is a read-only snapshot of a conversation.
type StateView struct {
	History            []models.Message
	QuestionsRemaining int
	LimitReached       bool
}

// ConversationService runs the quota-limited persona conversation. One
// turn per (session, artwork) key is in flight at a time; concurrent
// requests for the same key serialize on a keyed lock.
type ConversationService struct {
	catalog   *catalog.Catalog
	sessions  SessionStore
	generator llm.GenerationClient
	retriever ContextRetriever
	sampler   ExemplarSampler
	metadata  MetadataSource
	cfg       ConversationConfig
	logger    *zap.Logger

	// locks entries are retained for the life of the process; the key
	// space is bounded by visitors times catalog size, so there is no
	// eviction. Revisit if the catalog or visitor volume changes that.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConversationService(
	cat *catalog.Catalog,
	sessions SessionStore,
	generator llm.GenerationClient,
	retriever ContextRetriever,
	sampler ExemplarSampler,
	metadata MetadataSource,
	cfg ConversationConfig,
	logger *zap.Logger,
) *ConversationService {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultMaxQuestions
	}
	if cfg.StyleExamples <= 0 {
		cfg.StyleExamples = 6
	}

	return &ConversationService{
		catalog:   cat,
		sessions:  sessions,
		generator: generator,
		retriever: retriever,
		sampler:   sampler,
		metadata:  metadata,
		cfg:       cfg,
		logger:    logger.Named("conversation"),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Ask runs one conversation turn. The quota check happens before the
// question enters the history and before any downstream call; a
// rejected question costs nothing. A failure after the question was
// accepted leaves it in the history, so the user sees what they asked
// even when no reply arrived.
func (s *ConversationService) Ask(ctx context.Context, sessionID, artworkID, question string) (*TurnResult, error) {
	artwork, err := s.catalog.Get(artworkID)
	if err != nil {
		return nil, err
	}

	key := stateKey(sessionID, artworkID)
	unlock := s.lock(key)
	defer unlock()

	state, err := s.loadOrSeed(ctx, key, artwork)
	if err != nil {
		return nil, err
	}

	if state.QuestionsAsked >= s.cfg.MaxQuestions {
		return nil, fmt.Errorf("%w: %d questions asked", apperrors.ErrQuotaExceeded, state.QuestionsAsked)
	}

	state.History = append(state.History, models.Message{Role: models.RoleUser, Content: question})

	reply, err := s.generateReply(ctx, artwork, question, state)
	if err != nil {
		if saveErr := s.sessions.Set(ctx, key, state); saveErr != nil {
			s.logger.Error("saving state after failed turn", zap.String("key", key), zap.Error(saveErr))
		}
		return nil, err
	}

	state.History = append(state.History, models.Message{Role: models.RoleAssistant, Content: reply})
	state.QuestionsAsked++

	if err := s.sessions.Set(ctx, key, state); err != nil {
		return nil, fmt.Errorf("saving conversation state: %w", err)
	}

	s.logger.Info("turn completed",
		zap.String("artwork_id", artworkID),
		zap.Int("questions_asked", state.QuestionsAsked))

	return &TurnResult{
		Reply:              reply,
		QuestionsRemaining: s.remaining(state),
		LimitReached:       state.QuestionsAsked >= s.cfg.MaxQuestions,
	}, nil
}

// State returns the current conversation snapshot, seeding a fresh one
// in memory when none exists yet. Reading never writes.
func (s *ConversationService) State(ctx context.Context, sessionID, artworkID string) (*StateView, error) {
	artwork, err := s.catalog.Get(artworkID)
	if err != nil {
		return nil, err
	}

	state, err := s.loadOrSeed(ctx, stateKey(sessionID, artworkID), artwork)
	if err != nil {
		return nil, err
	}

	return &StateView{
		History:            state.History,
		QuestionsRemaining: s.remaining(state),
		LimitReached:       state.QuestionsAsked >= s.cfg.MaxQuestions,
	}, nil
}

// Reset discards the conversation and restores the seed state.
func (s *ConversationService) Reset(ctx context.Context, sessionID, artworkID string) error {
	artwork, err := s.catalog.Get(artworkID)
	if err != nil {
		return err
	}

	key := stateKey(sessionID, artworkID)
	unlock := s.lock(key)
	defer unlock()

	if err := s.sessions.Set(ctx, key, models.NewConversationState(artwork.InitialMessage)); err != nil {
		return fmt.Errorf("resetting conversation: %w", err)
	}
	return nil
}

func (s *ConversationService) generateReply(ctx context.Context, artwork models.Artwork, question string, state *models.ConversationState) (string, error) {
	exemplars, err := s.sampler.Sample(artwork.Artist, s.cfg.StyleExamples)
	if err != nil {
		// A persona without a style pool still converses, just without
		// exemplars.
		s.logger.Warn("no style exemplars", zap.String("artist", artwork.Artist), zap.Error(err))
		exemplars = nil
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, artwork.Artist, artwork.ID, s.cfg.RetrievalTopK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	meta := s.metadata.Metadata(ctx, artwork.ID)
	messages := prompts.BuildMessages(artwork.SystemPrompt, meta, exemplars, retrieved, state.History)

	reply, err := s.generator.GenerateConversation(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	return reply, nil
}

func (s *ConversationService) loadOrSeed(ctx context.Context, key string, artwork models.Artwork) (*models.ConversationState, error) {
	state, err := s.sessions.Get(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.NewConversationState(artwork.InitialMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation state: %w", err)
	}
	return state, nil
}

func (s *ConversationService) remaining(state *models.ConversationState) int {
	if r := s.cfg.MaxQuestions - state.QuestionsAsked; r > 0 {
		return r
	}
	return 0
}

func (s *ConversationService) lock(key string) func() {
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func stateKey(sessionID, artworkID string) string {
	return sessionID + ":" + artworkID
}
