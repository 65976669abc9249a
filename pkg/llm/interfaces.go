// Package llm provides the embedding and generation service clients.
package llm

import (
	"context"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// EmbeddingClient maps a text string to a fixed-dimension dense vector.
// Calls are never memoized; every call re-embeds.
// Use this interface for dependency injection to enable mocking in tests.
type EmbeddingClient interface {
	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// GenerationClient produces one assistant reply from an ordered list of
// role-tagged messages. The service is a black box: any failure, including
// an empty reply, surfaces as a *Error with OpGeneration.
type GenerationClient interface {
	GenerateConversation(ctx context.Context, messages []models.Message) (string, error)
}

// Ensure the OpenAI client implements both interfaces at compile time.
var (
	_ EmbeddingClient  = (*Client)(nil)
	_ GenerationClient = (*Client)(nil)
)
