package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-ai/atelier-engine/pkg/config"
)

// NewRedisClient creates a Redis client and verifies the connection.
// Returns nil when Redis is not configured (empty host); callers fall
// back to the in-memory session store.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return client, nil
}
