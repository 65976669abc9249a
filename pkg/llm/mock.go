package llm

import (
	"context"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// MockClient is a configurable mock for both client interfaces.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// GenerateConversationFunc is called when GenerateConversation is
	// invoked. If nil, returns an empty string and nil error.
	GenerateConversationFunc func(ctx context.Context, messages []models.Message) (string, error)

	// CreateEmbeddingFunc is called when CreateEmbedding is invoked.
	// If nil, returns nil slice and nil error.
	CreateEmbeddingFunc func(ctx context.Context, input string) ([]float32, error)

	// Call tracking for verification
	GenerateConversationCalls int
	CreateEmbeddingCalls      int

	// LastMessages records the message list of the most recent generation call.
	LastMessages []models.Message
}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GenerateConversation implements GenerationClient.
func (m *MockClient) GenerateConversation(ctx context.Context, messages []models.Message) (string, error) {
	m.GenerateConversationCalls++
	m.LastMessages = messages
	if m.GenerateConversationFunc != nil {
		return m.GenerateConversationFunc(ctx, messages)
	}
	return "", nil
}

// CreateEmbedding implements EmbeddingClient.
func (m *MockClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	m.CreateEmbeddingCalls++
	if m.CreateEmbeddingFunc != nil {
		return m.CreateEmbeddingFunc(ctx, input)
	}
	return nil, nil
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.GenerateConversationCalls = 0
	m.CreateEmbeddingCalls = 0
	m.LastMessages = nil
}

var (
	_ EmbeddingClient  = (*MockClient)(nil)
	_ GenerationClient = (*MockClient)(nil)
)
