package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// MemoryStore is a brute-force cosine-similarity store. It backs tests and
// local development; production uses the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string]models.Chunk
	vectors map[string][]float32
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:  make(map[string]models.Chunk),
		vectors: make(map[string][]float32),
	}
}

// Upsert implements DocumentStore.
func (s *MemoryStore) Upsert(ctx context.Context, chunk models.Chunk, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunk.ID] = chunk
	s.vectors[chunk.ID] = vector
	return nil
}

// Query implements DocumentStore.
func (s *MemoryStore) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ScoredChunk, 0, len(s.chunks))
	for id, chunk := range s.chunks {
		if filter != nil && !filter.Matches(chunk) {
			continue
		}
		results = append(results, ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(vector, s.vectors[id]),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// HasPrefix implements DocumentStore.
func (s *MemoryStore) HasPrefix(ctx context.Context, prefix string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.chunks {
		if strings.HasPrefix(id, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ DocumentStore = (*MemoryStore)(nil)
