package embedder

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	h := NewHashingEmbedder(64)
	v1, err := h.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	v2, err := h.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestHashingEmbedderDistinguishesInputs(t *testing.T) {
	h := NewHashingEmbedder(64)
	v1, err := h.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	v2, err := h.Embed(context.Background(), "goodbye world")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestHashingEmbedderDimAndNormalization(t *testing.T) {
	h := NewHashingEmbedder(128)
	assert.Equal(t, 128, h.Dim())

	vec, err := h.Embed(context.Background(), "some source text")
	require.NoError(t, err)
	require.Len(t, vec, 128)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	assert.InDelta(t, 1.0, norm, 1e-4)
}

func TestNewHashingEmbedderDefaultsDim(t *testing.T) {
	h := NewHashingEmbedder(0)
	assert.Equal(t, 256, h.Dim())
}

type fakeCacheStore struct {
	mu      sync.Mutex
	vectors map[types.Fingerprint][]float32
	puts    int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{vectors: map[types.Fingerprint][]float32{}}
}

func (f *fakeCacheStore) GetEmbedding(ctx context.Context, fp types.Fingerprint) ([]float32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vec, ok := f.vectors[fp]
	return vec, ok, nil
}

func (f *fakeCacheStore) PutEmbedding(ctx context.Context, fp types.Fingerprint, vec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[fp] = vec
	f.puts++
	return nil
}

type countingEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (c *countingEmbedder) Dim() int { return 4 }

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return []float32{1, 2, 3, 4}, nil
}

func TestCacheEmbedUsesStoreOnHit(t *testing.T) {
	store := newFakeCacheStore()
	var fp types.Fingerprint
	fp[0] = 1
	store.vectors[fp] = []float32{9, 9, 9}

	inner := &countingEmbedder{}
	cache := NewCache(inner, store)

	vec, err := cache.Embed(context.Background(), fp, "ignored")
	require.NoError(t, err)
	assert.Equal(t, []float32{9, 9, 9}, vec)
	assert.Equal(t, 0, inner.calls)
}

func TestCacheEmbedDedupesConcurrentMisses(t *testing.T) {
	store := newFakeCacheStore()
	inner := &countingEmbedder{}
	cache := NewCache(inner, store)

	var fp types.Fingerprint
	fp[0] = 7

	var wg sync.WaitGroup
	results := make([][]float32, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			vec, err := cache.Embed(context.Background(), fp, "text")
			require.NoError(t, err)
			results[idx] = vec
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []float32{1, 2, 3, 4}, r)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, store.puts)
}
