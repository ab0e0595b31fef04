package embed

import (
	"context"

	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
)

type cachedEmbedder struct {
	inner Embedder
	cache cache.EmbeddingCache
}

// Cached consults c before calling inner and stores fresh vectors. Cache
// failures are logged and fall through to inner.
func Cached(inner Embedder, c cache.EmbeddingCache) Embedder {
	if c == nil {
		return inner
	}
	return &cachedEmbedder{inner: inner, cache: c}
}

func (e *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := matches.TextKey(text)
	if vec, ok, err := e.cache.Get(ctx, key); err != nil {
		logging.Warnf("[embed] cache get: %v", err)
	} else if ok {
		return vec, nil
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, vec); err != nil {
		logging.Warnf("[embed] cache set: %v", err)
	}
	return vec, nil
}
