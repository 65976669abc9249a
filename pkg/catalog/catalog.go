// Package catalog loads the artwork roster: which artworks can be
// talked to, and each one's persona configuration.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atelier-ai/atelier-engine/pkg/apperrors"
	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// Catalog is the immutable set of configured artworks.
type Catalog struct {
	byID  map[string]models.Artwork
	order []string
}

// Load reads the catalog YAML file. Duplicate ids and entries missing
// required fields are configuration errors.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var doc struct {
		Artworks []models.Artwork `yaml:"artworks"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	return New(doc.Artworks)
}

// New builds a catalog from entries already in memory.
func New(artworks []models.Artwork) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]models.Artwork, len(artworks))}
	for _, a := range artworks {
		switch {
		case a.ID == "":
			return nil, fmt.Errorf("catalog entry %q has no id", a.Title)
		case a.SystemPrompt == "":
			return nil, fmt.Errorf("artwork %s has no system prompt", a.ID)
		case a.InitialMessage == "":
			return nil, fmt.Errorf("artwork %s has no initial message", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate artwork id %s", a.ID)
		}
		c.byID[a.ID] = a
		c.order = append(c.order, a.ID)
	}
	return c, nil
}

// Get returns the artwork for an id.
func (c *Catalog) Get(id string) (models.Artwork, error) {
	a, ok := c.byID[id]
	if !ok {
		return models.Artwork{}, fmt.Errorf("%w: %s", apperrors.ErrArtworkNotFound, id)
	}
	return a, nil
}

// List returns all artworks in file order.
func (c *Catalog) List() []models.Artwork {
	out := make([]models.Artwork, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
