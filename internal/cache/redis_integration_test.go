//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr)
	require.NoError(t, err)
	defer store.Close()

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, key, []byte("[0.5,1]"), time.Minute))
	val, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[0.5,1]", string(val))
}

func TestIntegration_CachedEmbedderOverRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr)
	require.NoError(t, err)
	defer store.Close()

	inner := &countingEmbedder{}
	model := "integration-" + time.Now().Format(time.RFC3339Nano)
	emb := NewCachedEmbedder(inner, store, model, time.Minute)

	first, err := emb.Embed(ctx, "python testing")
	require.NoError(t, err)
	second, err := emb.Embed(ctx, "python testing")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}
