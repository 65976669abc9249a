package museum

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/models"
	"github.com/atelier-ai/atelier-engine/pkg/resolver"
)

// Fetcher is the slice of Client the cache depends on.
type Fetcher interface {
	Fetch(ctx context.Context, objectNumber string) (pid string, doc map[string]any, err error)
}

var _ Fetcher = (*Client)(nil)

// Cache holds the resolved metadata for a single object number with a
// TTL. A read past the expiry refetches synchronously; when the refetch
// fails the last-known value is served stale, or an empty record when
// nothing was ever fetched. Conversation turns never fail because the
// museum API is down.
type Cache struct {
	fetcher      Fetcher
	objectNumber string
	ttl          time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu    sync.Mutex
	value *models.CachedMetadata
}

// NewCache creates a cache for one object number.
func NewCache(fetcher Fetcher, objectNumber string, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher:      fetcher,
		objectNumber: objectNumber,
		ttl:          ttl,
		logger:       logger.Named("museum_cache"),
		now:          time.Now,
	}
}

// Warm fetches once so the first conversation turn does not pay the
// fetch latency. A warm failure is logged and tolerated.
func (c *Cache) Warm(ctx context.Context) {
	if _, err := c.refresh(ctx); err != nil {
		c.logger.Warn("cache warm failed, continuing without metadata",
			zap.String("object_number", c.objectNumber),
			zap.Error(err))
	}
}

// Get returns the cached metadata, refetching when expired.
func (c *Cache) Get(ctx context.Context) models.CachedMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && !c.value.Expired(c.now()) {
		return *c.value
	}

	fresh, err := c.refreshLocked(ctx)
	if err == nil {
		return fresh
	}

	if c.value != nil {
		c.logger.Warn("metadata refresh failed, serving stale value",
			zap.String("object_number", c.objectNumber),
			zap.Error(err))
		return *c.value
	}

	c.logger.Warn("metadata refresh failed with no prior value",
		zap.String("object_number", c.objectNumber),
		zap.Error(err))
	return models.CachedMetadata{ObjectNumber: c.objectNumber}
}

func (c *Cache) refresh(ctx context.Context) (models.CachedMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (models.CachedMetadata, error) {
	pid, doc, err := c.fetcher.Fetch(ctx, c.objectNumber)
	if err != nil {
		return models.CachedMetadata{}, err
	}

	value := models.CachedMetadata{
		ObjectNumber: c.objectNumber,
		PID:          pid,
		Facts:        resolver.ExtractFacts(doc),
		Raw:          doc,
		ExpiresAt:    c.now().Add(c.ttl),
	}
	c.value = &value
	return value, nil
}
