package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicenote/internal/config"
)

const cacheKeyPrefix = "voicenote:session:"

// RedisSessionCache stores token -> user id in Redis.
type RedisSessionCache struct {
	client *redis.Client
}

var _ SessionCache = (*RedisSessionCache)(nil)

// NewRedisSessionCache connects to the Redis server in cfg.
func NewRedisSessionCache(cfg config.RedisConfig) *RedisSessionCache {
	return &RedisSessionCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Ping checks the connection.
func (c *RedisSessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached user id for token.
func (c *RedisSessionCache) Get(ctx context.Context, token string) (string, bool, error) {
	userID, err := c.client.Get(ctx, cacheKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return userID, true, nil
}

// Set caches userID for token for ttl.
func (c *RedisSessionCache) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, cacheKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes token from the cache.
func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}
