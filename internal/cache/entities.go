package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/arbscanner/internal/entities"
)

// EntityCache stores LLM-extracted entities by text hash.
type EntityCache interface {
	Get(ctx context.Context, key string) (entities.Entities, bool, error)
	Set(ctx context.Context, key string, value entities.Entities) error
	Close() error
}

type redisEntityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisEntityCache(client *redis.Client, ttl time.Duration, prefix string) EntityCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = "ents"
	}
	return &redisEntityCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisEntityCache) Get(ctx context.Context, key string) (entities.Entities, bool, error) {
	if c == nil || c.client == nil {
		return entities.Entities{}, false, nil
	}
	data, err := c.client.Get(ctx, prefixed(c.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Entities{}, false, nil
	}
	if err != nil {
		return entities.Entities{}, false, err
	}
	var out entities.Entities
	if err := json.Unmarshal(data, &out); err != nil {
		return entities.Entities{}, false, err
	}
	return out, true, nil
}

func (c *redisEntityCache) Set(ctx context.Context, key string, value entities.Entities) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, prefixed(c.prefix, key), data, c.ttl).Err()
}

func (c *redisEntityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
