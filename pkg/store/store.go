// Package store persists embedded chunks and answers metadata-filtered
// nearest-neighbor queries.
package store

import (
	"context"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// ScoredChunk is a query result: a chunk and its similarity to the query
// vector (higher is more similar). Tie order between equal scores is
// store-dependent.
type ScoredChunk struct {
	Chunk models.Chunk
	Score float64
}

// DocumentStore provides idempotent upsert and filtered nearest-neighbor
// query over (id, vector, text, metadata) tuples.
type DocumentStore interface {
	// Upsert writes the chunk and its vector; an existing id is overwritten.
	Upsert(ctx context.Context, chunk models.Chunk, vector []float32) error

	// Query returns the k most similar chunks among those matching filter,
	// ranked by similarity descending. A nil filter matches everything.
	Query(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredChunk, error)

	// HasPrefix reports whether any chunk id starts with prefix. Used as
	// the coarse idempotence probe by the indexing pipeline.
	HasPrefix(ctx context.Context, prefix string) (bool, error)
}
