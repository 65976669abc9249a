package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/services"
)

const (
	visitorCookieName = "atelier_session"
	visitorIDKey      = "visitor_id"

	suggestionCount = 3
)

// Suggester proposes follow-up questions for a turn. Optional; a nil
// suggester disables suggestions.
type Suggester interface {
	Suggest(ctx context.Context, artworkID, query string, k int) ([]string, error)
}

// ChatHandler serves the conversation endpoints.
type ChatHandler struct {
	conversations *services.ConversationService
	suggester     Suggester
	cookies       *sessions.CookieStore
	logger        *zap.Logger
}

func NewChatHandler(conversations *services.ConversationService, suggester Suggester, cookies *sessions.CookieStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		suggester:     suggester,
		cookies:       cookies,
		logger:        logger.Named("chat_handler"),
	}
}

// RegisterRoutes registers the handler's routes on the mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /chat/{artwork_id}", h.State)
	mux.HandleFunc("POST /chat/{artwork_id}", h.Turn)
	mux.HandleFunc("POST /chat/{artwork_id}/reset", h.Reset)
}

// TurnRequest is the POST /chat/{artwork_id} body.
type TurnRequest struct {
	Message string `json:"message"`
}

// TurnResponse is the POST /chat/{artwork_id} success body.
type TurnResponse struct {
	Success            bool     `json:"success"`
	Response           string   `json:"response"`
	QuestionsRemaining int      `json:"questions_remaining"`
	LimitReached       bool     `json:"limit_reached"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}

// StateResponse is the GET /chat/{artwork_id} body.
type StateResponse struct {
	History            []models.Message `json:"history"`
	QuestionsRemaining int              `json:"questions_remaining"`
	LimitReached       bool             `json:"limit_reached"`
}

// State returns the conversation snapshot for the visitor.
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	artworkID := r.PathValue("artwork_id")
	visitor := h.visitorID(w, r)

	state, err := h.conversations.State(r.Context(), visitor, artworkID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, StateResponse{
		History:            state.History,
		QuestionsRemaining: state.QuestionsRemaining,
		LimitReached:       state.LimitReached,
	})
}

// Turn runs one conversation turn.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	artworkID := r.PathValue("artwork_id")
	visitor := h.visitorID(w, r)

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	result, err := h.conversations.Ask(r.Context(), visitor, artworkID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := TurnResponse{
		Success:            true,
		Response:           result.Reply,
		QuestionsRemaining: result.QuestionsRemaining,
		LimitReached:       result.LimitReached,
	}
	if h.suggester != nil {
		suggestions, err := h.suggester.Suggest(r.Context(), artworkID, req.Message, suggestionCount)
		if err != nil {
			h.logger.Debug("no suggestions", zap.String("artwork_id", artworkID), zap.Error(err))
		} else {
			response.SuggestedQuestions = suggestions
		}
	}

	_ = WriteJSON(w, http.StatusOK, response)
}

// Reset discards the visitor's conversation for the artwork.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	artworkID := r.PathValue("artwork_id")
	visitor := h.visitorID(w, r)

	if err := h.conversations.Reset(r.Context(), visitor, artworkID); err != nil {
		h.writeError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrArtworkNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "artwork_not_found", "Unknown artwork.")
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		_ = ErrorResponse(w, http.StatusTooManyRequests, "limit_reached",
			"You've reached the maximum number of questions.")
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "server_error",
			"Something went wrong. Please try again.")
	}
}

// visitorID reads the visitor id from the session cookie, minting one on
// first contact.
func (h *ChatHandler) visitorID(w http.ResponseWriter, r *http.Request) string {
	session, err := h.cookies.Get(r, visitorCookieName)
	if err != nil {
		// A corrupt cookie gets replaced, not rejected.
		h.logger.Debug("replacing unreadable session cookie", zap.Error(err))
	}

	if id, ok := session.Values[visitorIDKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	session.Values[visitorIDKey] = id
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("saving session cookie", zap.Error(err))
	}
	return id
}
