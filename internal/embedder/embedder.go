// Package embedder turns Node text into fixed-dimension vectors for
// the vector index. The default Embedder is a deterministic
// hashing projection requiring no network access, so the retrieval
// pipeline is always exercisable; a real provider can be swapped in
// behind the same interface under the genai build tag.
package embedder

import (
	"context"
	"crypto/sha256"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/codegraph-dev/codegraph/internal/metrics"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// Embedder maps text to a vector of Dim() length.
type Embedder interface {
	Dim() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache deduplicates embedding calls by content fingerprint: inputs
// that hash identically share one in-flight computation (singleflight)
// and one cached result, matching "the Node↔vector join is many-to-one".
type Cache struct {
	inner Embedder
	group singleflight.Group
	store CacheStore
}

// CacheStore is the persistence side of the cache; internal/store
// satisfies it directly.
type CacheStore interface {
	GetEmbedding(ctx context.Context, fp types.Fingerprint) ([]float32, bool, error)
	PutEmbedding(ctx context.Context, fp types.Fingerprint, vec []float32) error
}

// NewCache wraps inner with a fingerprint-keyed, single-flighted cache
// backed by store.
func NewCache(inner Embedder, store CacheStore) *Cache {
	return &Cache{inner: inner, store: store}
}

// Embed returns the vector for text, computing it at most once per
// distinct fingerprint even under concurrent callers.
func (c *Cache) Embed(ctx context.Context, fp types.Fingerprint, text string) ([]float32, error) {
	if vec, ok, err := c.store.GetEmbedding(ctx, fp); err != nil {
		return nil, err
	} else if ok {
		metrics.EmbeddingCacheHits.Inc()
		return vec, nil
	}
	metrics.EmbeddingCacheMisses.Inc()

	key := fp.String()
	v, err, _ := c.group.Do(key, func() (any, error) {
		// A caller that missed above may arrive after an earlier flight
		// for this key finished and stored its vector; reuse it.
		if vec, ok, err := c.store.GetEmbedding(ctx, fp); err != nil {
			return nil, err
		} else if ok {
			return vec, nil
		}
		vec, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if err := c.store.PutEmbedding(ctx, fp, vec); err != nil {
			return nil, err
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// HashingEmbedder is the default, network-free embedder. It projects
// text into a Dim-length unit vector seeded by SHA-256 of the text, so
// the same input always produces the same output and near-duplicate
// inputs land near each other only by coincidence — it trades recall
// for availability, never correctness (callers never see a missing
// vector).
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder returns a hashing embedder producing dim-length
// vectors. A non-positive dim falls back to 256.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashingEmbedder{dim: dim}
}

func (h *HashingEmbedder) Dim() int { return h.dim }

func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	seed := sha256.Sum256([]byte(text))
	vec := make([]float32, h.dim)

	state := seed
	var norm float64
	for i := 0; i < h.dim; i++ {
		if i > 0 && i%len(state) == 0 {
			state = sha256.Sum256(state[:])
		}
		b := state[i%len(state)]
		v := float32(b)/127.5 - 1.0
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}
