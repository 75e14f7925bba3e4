package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogKeyPrefix = "catalog:"

// CatalogCache stores raw catalog responses keyed by request.
// It satisfies catalog.Cache.
type CatalogCache struct {
	client redis.Cmdable
}

// NewCatalogCache creates a CatalogCache backed by client.
func NewCatalogCache(client redis.Cmdable) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get returns the cached body and whether it was present.
func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores body for ttl.
func (c *CatalogCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, catalogKeyPrefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("catalog cache set %s: %w", key, err)
	}
	return nil
}
