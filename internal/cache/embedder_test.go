package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Close() error { return nil }

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 0.5}, nil
}

func TestCachedEmbedder_HitsAfterFirstCall(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMemoryStore()
	ce := NewCachedEmbedder(inner, store, "text-embedding-004", 0)

	first, err := ce.Embed(context.Background(), "python")
	require.NoError(t, err)
	second, err := ce.Embed(context.Background(), "python")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, DefaultEmbeddingTTL, store.ttls[ce.Key("python")])
}

func TestCachedEmbedder_KeyIncludesModel(t *testing.T) {
	a := NewCachedEmbedder(nil, nil, "model-a", time.Hour)
	b := NewCachedEmbedder(nil, nil, "model-b", time.Hour)

	assert.NotEqual(t, a.Key("python"), b.Key("python"))
	assert.Equal(t, a.Key("python"), a.Key("python"))
	assert.Regexp(t, `^emb:model-a:[0-9a-f]{64}$`, a.Key("python"))
}

func TestCachedEmbedder_StoreFailuresFallThrough(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	ce := NewCachedEmbedder(inner, store, "m", time.Hour)

	vec, err := ce.Embed(context.Background(), "sql")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 0.5}, vec)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedEmbedder_MalformedEntryRecomputed(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMemoryStore()
	ce := NewCachedEmbedder(inner, store, "m", time.Hour)
	store.data[ce.Key("git")] = []byte("not json")

	vec, err := ce.Embed(context.Background(), "git")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 0.5}, vec)
	assert.Equal(t, 1, inner.calls)
	assert.JSONEq(t, `[3, 0.5]`, string(store.data[ce.Key("git")]))
}

func TestCachedEmbedder_InnerErrorReturned(t *testing.T) {
	boom := errors.New("quota")
	ce := NewCachedEmbedder(&countingEmbedder{err: boom}, newMemoryStore(), "m", time.Hour)

	_, err := ce.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestNewRedisStore_RequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis address is required")
}
