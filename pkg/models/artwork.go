package models

// Artwork is one entry in the persona catalog. Immutable after load; keyed
// by the museum's stable object identifier.
type Artwork struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	Artist         string   `yaml:"artist" json:"artist"`
	Year           string   `yaml:"year" json:"year"`
	ImageRef       string   `yaml:"image" json:"image"`
	InitialMessage string   `yaml:"initial_message" json:"initial_message"`
	Presets        []string `yaml:"presets" json:"presets"`
	SystemPrompt   string   `yaml:"system_prompt" json:"system_prompt"`
}

// RelatedArtwork is a sibling work by the same artist in the collection,
// used to build artist_other_artwork chunks.
type RelatedArtwork struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Location string `json:"location"`
	Room     string `json:"room"`
}

// ArtworkSource is one entry of the build-time corpus document: the museum
// record plus encyclopedia texts gathered by the collection scripts.
type ArtworkSource struct {
	Title          string           `json:"title"`
	Artist         string           `json:"artist"`
	Year           string           `json:"year"`
	Room           string           `json:"room"`
	Location       string           `json:"location"`
	Material       []string         `json:"material"`
	Dimension      string           `json:"dimension"`
	Description    string           `json:"description"`
	WikiArtwork    string           `json:"wiki_artwork"`
	WikiArtist     string           `json:"wiki_artist"`
	ArtistArtworks []RelatedArtwork `json:"artist_artworks"`
}
