package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/catalog"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/services"
)

type noopRetriever struct{}

func (noopRetriever) Retrieve(_ context.Context, _, _, _ string, _ int) (string, error) {
	return "", nil
}

type noopSampler struct{}

func (noopSampler) Sample(_ string, _ int) ([]string, error) { return nil, nil }

type noopMetadata struct{}

func (noopMetadata) Metadata(_ context.Context, _ string) models.CachedMetadata {
	return models.CachedMetadata{}
}

type fixedSuggester struct{ questions []string }

func (s fixedSuggester) Suggest(_ context.Context, _, _ string, _ int) ([]string, error) {
	return s.questions, nil
}

func newTestServer(t *testing.T, generator *llm.MockClient) *httptest.Server {
	t.Helper()

	cat, err := catalog.New([]models.Artwork{{
		ID:             "sk-c-5",
		Title:          "The Night Watch",
		Artist:         "Rembrandt van Rijn",
		InitialMessage: "Step into the light.",
		SystemPrompt:   "You are The Night Watch.",
	}})
	require.NoError(t, err)

	svc := services.NewConversationService(
		cat,
		services.NewMemorySessionStore(),
		generator,
		noopRetriever{},
		noopSampler{},
		noopMetadata{},
		services.ConversationConfig{MaxQuestions: 1},
		zap.NewNop(),
	)

	cookies := sessions.NewCookieStore([]byte("test-secret"))
	handler := NewChatHandler(svc, fixedSuggester{questions: []string{"follow up?"}}, cookies, zap.NewNop())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func postTurn(t *testing.T, client *http.Client, url, message string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json",
		strings.NewReader(`{"message": "`+message+`"}`))
	require.NoError(t, err)
	return resp
}

func clientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestChatHandler_Turn(t *testing.T) {
	generator := &llm.MockClient{
		GenerateConversationFunc: func(_ context.Context, _ []models.Message) (string, error) {
			return "a painted reply", nil
		},
	}
	srv := newTestServer(t, generator)
	defer srv.Close()

	resp := postTurn(t, clientWithJar(t), srv.URL+"/chat/sk-c-5", "Why so dark?")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body TurnResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "a painted reply", body.Response)
	assert.Zero(t, body.QuestionsRemaining)
	assert.True(t, body.LimitReached)
	assert.Equal(t, []string{"follow up?"}, body.SuggestedQuestions)
}

func TestChatHandler_QuotaMapsTo429(t *testing.T) {
	generator := &llm.MockClient{
		GenerateConversationFunc: func(_ context.Context, _ []models.Message) (string, error) {
			return "reply", nil
		},
	}
	srv := newTestServer(t, generator)
	defer srv.Close()

	client := clientWithJar(t)
	resp := postTurn(t, client, srv.URL+"/chat/sk-c-5", "first")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postTurn(t, client, srv.URL+"/chat/sk-c-5", "second")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestChatHandler_UnknownArtworkMapsTo404(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())
	defer srv.Close()

	resp := postTurn(t, clientWithJar(t), srv.URL+"/chat/nope", "q")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatHandler_InfraFailureMapsTo500(t *testing.T) {
	generator := &llm.MockClient{
		GenerateConversationFunc: func(_ context.Context, _ []models.Message) (string, error) {
			return "", errors.New("model down")
		},
	}
	srv := newTestServer(t, generator)
	defer srv.Close()

	resp := postTurn(t, clientWithJar(t), srv.URL+"/chat/sk-c-5", "q")
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "server_error", body["error"])
}

func TestChatHandler_EmptyMessageRejected(t *testing.T) {
	srv := newTestServer(t, llm.NewMockClient())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat/sk-c-5", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatHandler_StateAndReset(t *testing.T) {
	generator := &llm.MockClient{
		GenerateConversationFunc: func(_ context.Context, _ []models.Message) (string, error) {
			return "reply", nil
		},
	}
	srv := newTestServer(t, generator)
	defer srv.Close()
	client := clientWithJar(t)

	resp := postTurn(t, client, srv.URL+"/chat/sk-c-5", "q")
	resp.Body.Close()

	resp, err := client.Get(srv.URL + "/chat/sk-c-5")
	require.NoError(t, err)
	var state StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Len(t, state.History, 3)
	assert.True(t, state.LimitReached)

	resp, err = client.Post(srv.URL+"/chat/sk-c-5/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/chat/sk-c-5")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Len(t, state.History, 1)
	assert.False(t, state.LimitReached)
}
