package models

import "fmt"

// ChunkType classifies the provenance of an indexed text chunk.
type ChunkType string

const (
	// ChunkTypeMetadata is the structured museum record rendered as text.
	ChunkTypeMetadata ChunkType = "metadata"
	// ChunkTypeCuratorial is the museum's curatorial description.
	ChunkTypeCuratorial ChunkType = "curatorial"
	// ChunkTypeWikiPainting is encyclopedia text about the artwork itself.
	ChunkTypeWikiPainting ChunkType = "wiki_painting"
	// ChunkTypeWikiArtistBio is encyclopedia text about the artist.
	// Carries only Artist, not PaintingID.
	ChunkTypeWikiArtistBio ChunkType = "wiki_artist_bio"
	// ChunkTypeArtistOtherArtwork documents another work by the same artist
	// in the collection. Carries SourcePaintingID pointing at the artwork
	// whose artist it documents.
	ChunkTypeArtistOtherArtwork ChunkType = "artist_other_artwork"
)

// Chunk is a bounded-size unit of retrievable text with provenance metadata.
// Identity is the composite key: "{painting_id}_{seq}" for artwork chunks,
// "artist_{artist}_{seq}" for biography chunks, and
// "{painting_id}_artist_artwork_{seq}" for cross-reference chunks. The key
// scheme guarantees chunks of different artworks never collide.
type Chunk struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Type ChunkType `json:"type"`

	// PaintingID is set on metadata, curatorial and wiki_painting chunks.
	PaintingID string `json:"painting_id,omitempty"`
	// Artist is set on wiki_artist_bio and artist_other_artwork chunks.
	Artist string `json:"artist,omitempty"`
	// SourcePaintingID is set on artist_other_artwork chunks only.
	SourcePaintingID string `json:"source_painting_id,omitempty"`
	// ArtworkTitle is set on artist_other_artwork chunks only.
	ArtworkTitle string `json:"artwork_title,omitempty"`
}

// PaintingChunkID builds the composite id for an artwork-scoped chunk.
func PaintingChunkID(paintingID string, seq int) string {
	return fmt.Sprintf("%s_%d", paintingID, seq)
}

// ArtistBioChunkID builds the composite id for an artist biography chunk.
func ArtistBioChunkID(artist string, seq int) string {
	return fmt.Sprintf("artist_%s_%d", artist, seq)
}

// OtherArtworkChunkID builds the composite id for a cross-reference chunk.
func OtherArtworkChunkID(paintingID string, seq int) string {
	return fmt.Sprintf("%s_artist_artwork_%d", paintingID, seq)
}
