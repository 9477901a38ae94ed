package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedEmbedder is a read-through Redis cache in front of an Embedder.
// Repeated intake of similar text (FAQ seeding, retries) skips the embedding
// service. A Redis outage degrades to direct calls; it never fails the
// operation, since the underlying service remains the source of truth.
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedEmbedder wraps inner with a Redis cache. A nil client disables
// caching entirely.
func NewCachedEmbedder(inner Embedder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Embed returns the cached vector when present, otherwise delegates and
// stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.client == nil {
		return c.inner.Embed(ctx, text)
	}

	key := embeddingCacheKey(text)
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var vector []float64
		if jsonErr := json.Unmarshal([]byte(cached), &vector); jsonErr == nil && len(vector) > 0 {
			return vector, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(vector); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(setErr))
		}
	}
	return vector, nil
}

func embeddingCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
