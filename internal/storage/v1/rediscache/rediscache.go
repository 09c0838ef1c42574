// Package rediscache provides an optional redis-backed cache for account snapshots.

package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stampmart/stampmart/internal/config"
)

const snapshotTTL = 60 * time.Second

// Cache wraps a redis client. A nil *Cache is a valid no-op cache so that callers
// never branch on whether caching is configured.
type Cache struct {
	client *redis.Client
	log    *zerolog.Logger
}

// InitCache initializes a cache client, returning nil when no redis DSN is configured.
func InitCache(cfg *config.CacheConfig, log *zerolog.Logger) (*Cache, error) {
	if cfg.RedisDSN == "" {
		log.Info().Msg("account snapshot cache is disabled")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisDSN)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("account snapshot cache initialized")
	return &Cache{client: redis.NewClient(opts), log: log}, nil
}

// Get retrieves and unmarshals a cached value into dest, reporting whether the key was present.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("cache retrieval failed")
		}
		return false
	}
	err = json.Unmarshal([]byte(val), dest)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache entry unmarshalling failed")
		return false
	}
	return true
}

// Set stores a value under key with the snapshot TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache entry marshalling failed")
		return
	}
	err = c.client.Set(ctx, key, b, snapshotTTL).Err()
	if err != nil {
		c.log.Warn().Err(err).Msg("cache population failed")
	}
}

// Delete invalidates a key after a ledger mutation.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil {
		return
	}
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		c.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
