package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/jonathan/upskill-advisor/internal/logging"
)

// DefaultEmbeddingTTL is how long cached embeddings are kept.
const DefaultEmbeddingTTL = 7 * 24 * time.Hour

// Embedder produces embeddings; it matches retrieval.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder memoizes an Embedder in a Store. Cache errors are logged
// and never fail an Embed call.
type CachedEmbedder struct {
	inner Embedder
	store Store
	model string
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner. model namespaces the keys so switching
// embedding models never serves stale vectors.
func NewCachedEmbedder(inner Embedder, store Store, model string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	return &CachedEmbedder{inner: inner, store: store, model: model, ttl: ttl}
}

// Key returns the cache key for text.
func (c *CachedEmbedder) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text, computing and storing it on a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.Key(text)
	log := logging.Ctx(ctx)

	if raw, found, err := c.store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("embedding cache read failed")
	} else if found {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		log.Warn().Str("key", key).Msg("discarding malformed cached embedding")
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(vec)
	if err == nil {
		err = c.store.Set(ctx, key, raw, c.ttl)
	}
	if err != nil {
		log.Warn().Err(err).Msg("embedding cache write failed")
	}
	return vec, nil
}
