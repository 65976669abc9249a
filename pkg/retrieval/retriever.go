// Package retrieval answers "what do we know that is relevant to this
// question about this artwork". The store is shared across all artworks,
// so every query carries a scope filter; nothing about another painting
// or another artist can leak into a conversation.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/store"
)

// DefaultTopK is the number of chunks retrieved per turn when the
// caller does not specify.
const DefaultTopK = 5

// Retriever embeds a query and runs a scoped similarity search.
type Retriever struct {
	embedder llm.EmbeddingClient
	docs     store.DocumentStore
	logger   *zap.Logger
}

func NewRetriever(embedder llm.EmbeddingClient, docs store.DocumentStore, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		docs:     docs,
		logger:   logger.Named("retrieval"),
	}
}

// ScopeFilter admits exactly three kinds of chunks for a conversation
// about paintingID by creator: the painting's own chunks, other-artwork
// chunks scoped to this painting, and the creator's biography chunks.
func ScopeFilter(paintingID, creator string) store.Filter {
	return store.Or(
		store.Eq(store.FieldPaintingID, paintingID),
		store.And(
			store.Eq(store.FieldType, string(models.ChunkTypeArtistOtherArtwork)),
			store.Eq(store.FieldSourcePaintingID, paintingID),
		),
		store.And(
			store.Eq(store.FieldType, string(models.ChunkTypeWikiArtistBio)),
			store.Eq(store.FieldArtist, creator),
		),
	)
}

// Retrieve returns the texts of the top-k in-scope chunks for the query,
// joined in ranked order. No matching chunks yields an empty string, not
// an error.
func (r *Retriever) Retrieve(ctx context.Context, query, creator, paintingID string, k int) (string, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.docs.Query(ctx, vector, k, ScopeFilter(paintingID, creator))
	if err != nil {
		return "", fmt.Errorf("querying store: %w", err)
	}

	r.logger.Debug("retrieved context",
		zap.String("painting_id", paintingID),
		zap.Int("chunks", len(results)))

	texts := make([]string, 0, len(results))
	for _, res := range results {
		texts = append(texts, res.Chunk.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}
