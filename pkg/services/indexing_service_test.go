package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/store"
)

func sampleSource() models.ArtworkSource {
	return models.ArtworkSource{
		Title:       "The Night Watch",
		Artist:      "Rembrandt",
		Year:        "1642",
		Room:        "Gallery of Honour",
		Location:    "Amsterdam",
		Material:    []string{"oil paint", "canvas"},
		Dimension:   "379.5 x 453.5 cm",
		Description: "A militia company marching out.",
		WikiArtwork: "The painting is famous for its use of light.",
		WikiArtist:  "Rembrandt was a Dutch painter and printmaker.",
		ArtistArtworks: []models.RelatedArtwork{
			{Title: "The Jewish Bride", Artist: "Rembrandt", Location: "Amsterdam", Room: "2.8"},
		},
	}
}

func countingEmbedder() *llm.MockClient {
	return &llm.MockClient{
		CreateEmbeddingFunc: func(_ context.Context, _ string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}
}

func TestIndexArtwork_ProducesAllChunkKinds(t *testing.T) {
	ctx := context.Background()
	docs := store.NewMemoryStore()
	svc := NewIndexingService(countingEmbedder(), docs, 0, zap.NewNop())

	require.NoError(t, svc.IndexArtwork(ctx, "sk-c-5", sampleSource()))

	// Bio chunk scoped by artist only.
	results, err := docs.Query(ctx, []float32{1, 0}, 50,
		store.Eq(store.FieldType, string(models.ChunkTypeWikiArtistBio)))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "artist_Rembrandt_0", results[0].Chunk.ID)
	assert.Empty(t, results[0].Chunk.PaintingID)

	// Painting chunks: metadata first, then curatorial, then wiki.
	results, err = docs.Query(ctx, []float32{1, 0}, 50, store.Eq(store.FieldPaintingID, "sk-c-5"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	byID := map[string]models.Chunk{}
	for _, r := range results {
		byID[r.Chunk.ID] = r.Chunk
	}
	assert.Equal(t, models.ChunkTypeMetadata, byID["sk-c-5_0"].Type)
	assert.Contains(t, byID["sk-c-5_0"].Text, "Material: oil paint, canvas")
	assert.Equal(t, models.ChunkTypeCuratorial, byID["sk-c-5_1"].Type)
	assert.Equal(t, models.ChunkTypeWikiPainting, byID["sk-c-5_2"].Type)

	// Cross-reference chunk.
	results, err = docs.Query(ctx, []float32{1, 0}, 50,
		store.Eq(store.FieldType, string(models.ChunkTypeArtistOtherArtwork)))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sk-c-5_artist_artwork_0", results[0].Chunk.ID)
	assert.Equal(t, "sk-c-5", results[0].Chunk.SourcePaintingID)
	assert.Contains(t, results[0].Chunk.Text, "The Jewish Bride")
}

func TestIndexArtwork_SkipsWhenAlreadyIndexed(t *testing.T) {
	ctx := context.Background()
	docs := store.NewMemoryStore()
	require.NoError(t, docs.Upsert(ctx,
		models.Chunk{ID: "sk-c-5_0", Type: models.ChunkTypeMetadata, PaintingID: "sk-c-5"},
		[]float32{1}))

	embedder := countingEmbedder()
	svc := NewIndexingService(embedder, docs, 0, zap.NewNop())

	require.NoError(t, svc.IndexArtwork(ctx, "sk-c-5", sampleSource()))
	assert.Zero(t, embedder.CreateEmbeddingCalls)
	assert.Equal(t, 1, docs.Len())
}

func TestIndexArtwork_EmbeddingFailureAborts(t *testing.T) {
	ctx := context.Background()
	docs := store.NewMemoryStore()
	calls := 0
	embedder := &llm.MockClient{
		CreateEmbeddingFunc: func(_ context.Context, _ string) ([]float32, error) {
			calls++
			if calls > 2 {
				return nil, errors.New("embedding down")
			}
			return []float32{1, 0}, nil
		},
	}
	svc := NewIndexingService(embedder, docs, 0, zap.NewNop())

	err := svc.IndexArtwork(ctx, "sk-c-5", sampleSource())
	assert.ErrorContains(t, err, "embedding chunk")
	// Chunks indexed before the failure remain; the prefix probe makes the
	// re-run skip or redo at whole-artwork granularity.
	assert.Less(t, docs.Len(), 6)
}

func TestIndexAll_ContinuesPastFailedArtwork(t *testing.T) {
	ctx := context.Background()
	docs := store.NewMemoryStore()
	embedder := &llm.MockClient{
		CreateEmbeddingFunc: func(_ context.Context, input string) ([]float32, error) {
			if strings.Contains(input, "Vermeer") {
				return nil, errors.New("embedding down")
			}
			return []float32{1, 0}, nil
		},
	}
	svc := NewIndexingService(embedder, docs, 0, zap.NewNop())

	broken := sampleSource()
	broken.Artist = "Vermeer"
	broken.WikiArtist = "Vermeer was a Dutch painter."

	err := svc.IndexAll(ctx, map[string]models.ArtworkSource{
		"sk-c-5": sampleSource(),
		"sk-a-1": broken,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "artwork sk-a-1")

	indexed, probeErr := docs.HasPrefix(ctx, "sk-c-5_")
	require.NoError(t, probeErr)
	assert.True(t, indexed)
}
