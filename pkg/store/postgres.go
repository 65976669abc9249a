package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/database"
	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// PostgresStore persists chunks in the artwork_chunks table with a pgvector
// embedding column. Similarity is cosine (the <=> operator); ties share a
// distance and their relative order is whatever the planner emits.
type PostgresStore struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPostgresStore creates a Postgres-backed document store.
func NewPostgresStore(db *database.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger.Named("store")}
}

// Upsert implements DocumentStore.
func (s *PostgresStore) Upsert(ctx context.Context, chunk models.Chunk, vector []float32) error {
	query := `
		INSERT INTO artwork_chunks (
			id, text, type, painting_id, artist, source_painting_id, artwork_title, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			type = EXCLUDED.type,
			painting_id = EXCLUDED.painting_id,
			artist = EXCLUDED.artist,
			source_painting_id = EXCLUDED.source_painting_id,
			artwork_title = EXCLUDED.artwork_title,
			embedding = EXCLUDED.embedding`

	_, err := s.db.Exec(ctx, query,
		chunk.ID, chunk.Text, string(chunk.Type),
		chunk.PaintingID, chunk.Artist, chunk.SourcePaintingID, chunk.ArtworkTitle,
		formatVector(vector),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Query implements DocumentStore.
func (s *PostgresStore) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredChunk, error) {
	args := []any{formatVector(vector)}
	where, args := CompileSQL(filter, args)
	args = append(args, k)

	query := fmt.Sprintf(`
		SELECT id, text, type, painting_id, artist, source_painting_id, artwork_title,
		       1 - (embedding <=> $1::vector) AS score
		FROM artwork_chunks
		WHERE %s
		ORDER BY embedding <=> $1::vector
		LIMIT $%d`, where, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	results := make([]ScoredChunk, 0, k)
	for rows.Next() {
		var sc ScoredChunk
		var chunkType string
		err := rows.Scan(
			&sc.Chunk.ID, &sc.Chunk.Text, &chunkType,
			&sc.Chunk.PaintingID, &sc.Chunk.Artist,
			&sc.Chunk.SourcePaintingID, &sc.Chunk.ArtworkTitle,
			&sc.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		sc.Chunk.Type = models.ChunkType(chunkType)
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return results, nil
}

// HasPrefix implements DocumentStore.
func (s *PostgresStore) HasPrefix(ctx context.Context, prefix string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM artwork_chunks WHERE id LIKE $1 ESCAPE '\')`

	var exists bool
	if err := s.db.QueryRow(ctx, query, likePrefixPattern(prefix)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to probe chunk prefix %s: %w", prefix, err)
	}
	return exists, nil
}

// likePrefixPattern builds a LIKE pattern matching ids that start with
// prefix literally. Chunk ids use "_" as a separator and LIKE treats "_"
// and "%" as wildcards, so the prefix is escaped before "%" is appended:
// unescaped, "352_" would also match ids like "3528_0".
func likePrefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// formatVector renders a pgvector literal like "[0.1,0.2,0.3]".
func formatVector(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

var _ DocumentStore = (*PostgresStore)(nil)
