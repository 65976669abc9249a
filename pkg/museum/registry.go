package museum

import (
	"context"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// Registry maps artwork ids to their metadata caches. Artworks without
// a configured cache yield an empty record; a conversation degrades to
// retrieval-only grounding instead of failing.
type Registry struct {
	caches map[string]*Cache
}

func NewRegistry() *Registry {
	return &Registry{caches: make(map[string]*Cache)}
}

// Add registers the cache serving an artwork id.
func (r *Registry) Add(artworkID string, cache *Cache) {
	r.caches[artworkID] = cache
}

// WarmAll warms every registered cache.
func (r *Registry) WarmAll(ctx context.Context) {
	for _, cache := range r.caches {
		cache.Warm(ctx)
	}
}

// Metadata returns the cached record for an artwork, or an empty one.
func (r *Registry) Metadata(ctx context.Context, artworkID string) models.CachedMetadata {
	cache, ok := r.caches[artworkID]
	if !ok {
		return models.CachedMetadata{}
	}
	return cache.Get(ctx)
}
