package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// EmbeddingCache stores text embeddings by text hash.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, value []float32) error
	Close() error
}

type redisEmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisEmbeddingCache(client *redis.Client, ttl time.Duration, prefix string) EmbeddingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = "emb"
	}
	return &redisEmbeddingCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisEmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, prefixed(c.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *redisEmbeddingCache) Set(ctx context.Context, key string, value []float32) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, prefixed(c.prefix, key), data, c.ttl).Err()
}

func (c *redisEmbeddingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
