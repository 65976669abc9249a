package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

func scopedFilter(paintingID, creator string) Filter {
	return Or(
		Eq(FieldPaintingID, paintingID),
		And(
			Eq(FieldType, string(models.ChunkTypeArtistOtherArtwork)),
			Eq(FieldSourcePaintingID, paintingID),
		),
		And(
			Eq(FieldType, string(models.ChunkTypeWikiArtistBio)),
			Eq(FieldArtist, creator),
		),
	)
}

func TestFilter_Matches(t *testing.T) {
	f := scopedFilter("A1", "Rembrandt")

	tests := []struct {
		name  string
		chunk models.Chunk
		want  bool
	}{
		{"own painting chunk", models.Chunk{Type: models.ChunkTypeCuratorial, PaintingID: "A1"}, true},
		{"other artwork scoped here", models.Chunk{Type: models.ChunkTypeArtistOtherArtwork, SourcePaintingID: "A1", Artist: "Rembrandt"}, true},
		{"artist bio", models.Chunk{Type: models.ChunkTypeWikiArtistBio, Artist: "Rembrandt"}, true},
		{"unrelated painting", models.Chunk{Type: models.ChunkTypeCuratorial, PaintingID: "B2"}, false},
		{"other artist bio", models.Chunk{Type: models.ChunkTypeWikiArtistBio, Artist: "Vermeer"}, false},
		{"other artwork scoped elsewhere", models.Chunk{Type: models.ChunkTypeArtistOtherArtwork, SourcePaintingID: "B2"}, false},
		{"bio type but painting field", models.Chunk{Type: models.ChunkTypeWikiArtistBio, PaintingID: "A1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Matches(tt.chunk))
		})
	}
}

func TestFilter_CompileSQL(t *testing.T) {
	f := scopedFilter("A1", "Rembrandt")

	// Placeholder numbering continues after the caller's leading args.
	where, args := CompileSQL(f, []any{"[vector]"})

	assert.Equal(t,
		"(painting_id = $2 OR (type = $3 AND source_painting_id = $4) OR (type = $5 AND artist = $6))",
		where)
	require.Equal(t, []any{
		"[vector]", "A1", "artist_other_artwork", "A1", "wiki_artist_bio", "Rembrandt",
	}, args)
}

func TestFilter_CompileSQL_Nil(t *testing.T) {
	where, args := CompileSQL(nil, nil)
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestFilter_EmptyComposite(t *testing.T) {
	whereAnd, _ := CompileSQL(And(), nil)
	assert.Equal(t, "TRUE", whereAnd)
	assert.True(t, And().Matches(models.Chunk{}))

	whereOr, _ := CompileSQL(Or(), nil)
	assert.Equal(t, "FALSE", whereOr)
	assert.False(t, Or().Matches(models.Chunk{}))
}

func TestEq_UnknownFieldPanics(t *testing.T) {
	assert.Panics(t, func() { Eq(Field("nonsense"), "x") })
}
