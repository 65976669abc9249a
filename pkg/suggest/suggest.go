// Package suggest proposes follow-up questions. Each artwork's preset
// questions are embedded offline by the index build; at runtime a query
// is ranked against the presets by cosine similarity. When the query is
// itself one of the presets its own entry is skipped, so picking a
// suggested question always leads somewhere new.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
)

// ArtworkPresets holds an artwork's preset questions and their vectors,
// index-aligned.
type ArtworkPresets struct {
	Questions  []string    `json:"questions"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Table maps artwork id to its presets.
type Table map[string]ArtworkPresets

// LoadTable reads the precomputed preset-embedding file.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset embeddings: %w", err)
	}
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parsing preset embeddings: %w", err)
	}
	for id, p := range table {
		if len(p.Questions) != len(p.Embeddings) {
			return nil, fmt.Errorf("preset table for %s: %d questions, %d embeddings", id, len(p.Questions), len(p.Embeddings))
		}
	}
	return table, nil
}

// Engine ranks presets for free-text queries.
type Engine struct {
	table    Table
	embedder llm.EmbeddingClient
	logger   *zap.Logger
}

func NewEngine(table Table, embedder llm.EmbeddingClient, logger *zap.Logger) *Engine {
	return &Engine{
		table:    table,
		embedder: embedder,
		logger:   logger.Named("suggest"),
	}
}

// Suggest returns up to k preset questions for the artwork, most similar
// to the query first. A query equal to a preset reuses that preset's
// stored vector, saving the embedding call, and is excluded from its own
// suggestions.
func (e *Engine) Suggest(ctx context.Context, artworkID, query string, k int) ([]string, error) {
	presets, ok := e.table[artworkID]
	if !ok {
		return nil, fmt.Errorf("%w: no presets for artwork %s", apperrors.ErrNotFound, artworkID)
	}

	self := -1
	var vector []float32
	for i, q := range presets.Questions {
		if q == query {
			self = i
			vector = presets.Embeddings[i]
			break
		}
	}
	if vector == nil {
		var err error
		vector, err = e.embedder.CreateEmbedding(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(presets.Questions))
	for i := range presets.Questions {
		if i == self {
			continue
		}
		ranked = append(ranked, scored{idx: i, score: cosine(vector, presets.Embeddings[i])})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, presets.Questions[r.idx])
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
