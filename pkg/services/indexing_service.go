package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/chunker"
	"github.com/atelier-ai/atelier-engine/pkg/llm"
	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/store"
)

// IndexingService turns the corpus document into embedded chunks in the
// document store. Indexing is idempotent at artwork granularity: an
// artwork with any chunk already present is skipped wholesale. A chunk
// updated in the corpus therefore needs its artwork's chunks dropped
// before a re-run picks it up.
type IndexingService struct {
	embedder  llm.EmbeddingClient
	docs      store.DocumentStore
	chunkSize int
	logger    *zap.Logger
}

func NewIndexingService(embedder llm.EmbeddingClient, docs store.DocumentStore, chunkSize int, logger *zap.Logger) *IndexingService {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	return &IndexingService{
		embedder:  embedder,
		docs:      docs,
		chunkSize: chunkSize,
		logger:    logger.Named("indexing"),
	}
}

// LoadCorpus reads the build-time corpus document: painting id to source
// record.
func LoadCorpus(path string) (map[string]models.ArtworkSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var corpus map[string]models.ArtworkSource
	if err := json.Unmarshal(raw, &corpus); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	return corpus, nil
}

// IndexAll indexes every artwork in the corpus. One artwork failing
// does not stop the others; the joined error reports every failure so a
// re-run can pick up exactly the artworks that aborted.
func (s *IndexingService) IndexAll(ctx context.Context, corpus map[string]models.ArtworkSource) error {
	var errs []error
	for paintingID, source := range corpus {
		if err := s.IndexArtwork(ctx, paintingID, source); err != nil {
			s.logger.Error("indexing aborted for artwork",
				zap.String("painting_id", paintingID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("artwork %s: %w", paintingID, err))
		}
	}
	return errors.Join(errs...)
}

// IndexArtwork indexes a single artwork: the artist biography first,
// then the artwork's own chunks, then the cross-references to the
// artist's other works. Any embedding or store failure aborts the whole
// artwork.
func (s *IndexingService) IndexArtwork(ctx context.Context, paintingID string, source models.ArtworkSource) error {
	indexed, err := s.docs.HasPrefix(ctx, paintingID+"_")
	if err != nil {
		return fmt.Errorf("probing existing chunks: %w", err)
	}
	if indexed {
		s.logger.Info("already indexed, skipping", zap.String("painting_id", paintingID))
		return nil
	}

	s.logger.Info("indexing", zap.String("painting_id", paintingID))

	if err := s.indexArtistBio(ctx, source); err != nil {
		return err
	}
	if err := s.indexPaintingChunks(ctx, paintingID, source); err != nil {
		return err
	}
	return s.indexOtherArtworks(ctx, paintingID, source)
}

func (s *IndexingService) indexArtistBio(ctx context.Context, source models.ArtworkSource) error {
	for i, text := range chunker.Split(source.WikiArtist, s.chunkSize) {
		chunk := models.Chunk{
			ID:     models.ArtistBioChunkID(source.Artist, i),
			Text:   text,
			Type:   models.ChunkTypeWikiArtistBio,
			Artist: source.Artist,
		}
		if err := s.embedAndUpsert(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *IndexingService) indexPaintingChunks(ctx context.Context, paintingID string, source models.ArtworkSource) error {
	type piece struct {
		typ  models.ChunkType
		text string
	}

	pieces := []piece{{typ: models.ChunkTypeMetadata, text: metadataText(source)}}
	for _, text := range chunker.Split(source.Description, s.chunkSize) {
		pieces = append(pieces, piece{typ: models.ChunkTypeCuratorial, text: text})
	}
	for _, text := range chunker.Split(source.WikiArtwork, s.chunkSize) {
		pieces = append(pieces, piece{typ: models.ChunkTypeWikiPainting, text: text})
	}

	for i, p := range pieces {
		chunk := models.Chunk{
			ID:         models.PaintingChunkID(paintingID, i),
			Text:       p.text,
			Type:       p.typ,
			PaintingID: paintingID,
			Artist:     source.Artist,
		}
		if err := s.embedAndUpsert(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *IndexingService) indexOtherArtworks(ctx context.Context, paintingID string, source models.ArtworkSource) error {
	for i, art := range source.ArtistArtworks {
		chunk := models.Chunk{
			ID:               models.OtherArtworkChunkID(paintingID, i),
			Text:             otherArtworkText(art),
			Type:             models.ChunkTypeArtistOtherArtwork,
			Artist:           source.Artist,
			SourcePaintingID: paintingID,
			ArtworkTitle:     art.Title,
		}
		if err := s.embedAndUpsert(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *IndexingService) embedAndUpsert(ctx context.Context, chunk models.Chunk) error {
	vector, err := s.embedder.CreateEmbedding(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("embedding chunk %s: %w", chunk.ID, err)
	}
	if err := s.docs.Upsert(ctx, chunk, vector); err != nil {
		return fmt.Errorf("storing chunk %s: %w", chunk.ID, err)
	}
	return nil
}

func metadataText(source models.ArtworkSource) string {
	return strings.Join([]string{
		"Title: " + source.Title,
		"Artist: " + source.Artist,
		"Year: " + source.Year,
		"Room: " + source.Room,
		"Location: " + source.Location,
		"Material: " + strings.Join(source.Material, ", "),
		"Dimensions: " + source.Dimension,
	}, "\n")
}

func otherArtworkText(art models.RelatedArtwork) string {
	return strings.Join([]string{
		"Other artworks by the creator in the museum:",
		"Title: " + art.Title,
		"Artist: " + art.Artist,
		"Location: " + art.Location,
		"Room: " + art.Room,
	}, "\n")
}
