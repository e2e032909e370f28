// Package vectorindex answers nearest-neighbor queries over node
// embeddings. The default backend is a pure-Go brute-force cosine
// scan loaded from the store's node_vectors/embedding_cache tables.
// The sqlite_vec build tag only registers the sqlite-vec extension
// with SQLite (sqlitevec.go); no query in this package uses it, so
// every build answers queries with the brute-force scan.
package vectorindex

import (
	"context"
	"math"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// Hit is one nearest-neighbor result, best (highest score) first.
type Hit struct {
	Node  types.NodeID
	Score float64
}

// Source loads every currently-indexed (node, vector) pair. The store
// package satisfies this directly via AllNodeVectors.
type Source interface {
	AllNodeVectors(ctx context.Context) (map[types.NodeID][]float32, error)
}

// Index is a brute-force cosine-similarity nearest-neighbor index. It
// holds no connection of its own; Refresh pulls a fresh snapshot from
// Source each time it is called, matching the graph package's "never
// hold an owning copy of the store" convention.
type Index struct {
	vectors map[types.NodeID][]float32
}

// New returns an empty index. Call Refresh before querying.
func New() *Index {
	return &Index{vectors: map[types.NodeID][]float32{}}
}

// Refresh reloads every vector from src, replacing the prior snapshot.
func (idx *Index) Refresh(ctx context.Context, src Source) error {
	vecs, err := src.AllNodeVectors(ctx)
	if err != nil {
		return err
	}
	idx.vectors = vecs
	return nil
}

// Len reports how many vectors are currently loaded.
func (idx *Index) Len() int { return len(idx.vectors) }

// Query returns the topK nodes whose vector is most cosine-similar to
// query, best first. Ties break by ascending node id for determinism.
func (idx *Index) Query(query []float32, topK int) []Hit {
	if topK <= 0 || len(query) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(idx.vectors))
	for id, v := range idx.vectors {
		hits = append(hits, Hit{Node: id, Score: cosineSimilarity(query, v)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Node < hits[j].Node
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
