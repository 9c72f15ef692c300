package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort key-value layer. Callers must treat every error as
// non-fatal: the source of truth is always the database.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every key matching prefix* using SCAN so large
// keyspaces are not blocked by a single KEYS call.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %q: %w", prefix, err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// noopCache is used when no Redis instance is configured.
type noopCache struct{}

func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) (string, bool, error)       { return "", false, nil }
func (noopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (noopCache) DeleteByPrefix(context.Context, string) error            { return nil }
func (noopCache) Close() error                                            { return nil }
