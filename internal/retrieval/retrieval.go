// Package retrieval composes BM25 keyword search, vector kNN search,
// and reciprocal-rank fusion into the query-facing search surface.
// Fast mode bypasses semantic search and fusion entirely; hybrid mode
// runs both and fuses with provenance so callers can tell why a
// result appeared.
package retrieval

import (
	"context"
	"database/sql"
	"errors"

	"github.com/codegraph-dev/codegraph/internal/embedder"
	"github.com/codegraph-dev/codegraph/internal/queryexpand"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/codegraph-dev/codegraph/internal/vectorindex"
)

const defaultSemanticTopK = 50

// Origin records which primitive search(es) produced a Result.
type Origin string

const (
	OriginKeyword  Origin = "keyword"
	OriginSemantic Origin = "semantic"
	OriginBoth     Origin = "both"
)

// Result is one fused or keyword-only hit, carrying enough provenance
// for a caller to reconstruct why it ranked where it did.
type Result struct {
	Node         types.Node
	FusedScore   float64
	KeywordRank  int // 0 if absent from the keyword list
	KeywordScore float64
	SemanticRank int // 0 if absent from the semantic list
	Origin       Origin
}

// KeywordSearcher is the BM25 primitive; internal/store satisfies it.
type KeywordSearcher interface {
	KeywordSearch(ctx context.Context, query string, limit int) ([]store.KeywordHit, error)
}

// VectorSearcher is the semantic kNN primitive; internal/vectorindex
// satisfies it.
type VectorSearcher interface {
	Query(query []float32, topK int) []vectorindex.Hit
}

// NodeLookup resolves a bare NodeID into its full Node, needed for
// semantic hits that didn't also appear in the keyword list.
type NodeLookup interface {
	GetNode(ctx context.Context, id types.NodeID) (*types.Node, error)
}

// Engine wires the two primitive searches, the embedder used to turn
// a query into a vector, and the query expander used to broaden
// keyword terms.
type Engine struct {
	keyword  KeywordSearcher
	vectors  VectorSearcher
	nodes    NodeLookup
	embed    embedder.Embedder
	expand   *queryexpand.Expander
	pageRank map[types.NodeID]float64
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithPageRank supplies precomputed PageRank scores used to break
// fusion ties; omitted, ties fall through to node-id ordering only.
func WithPageRank(pr map[types.NodeID]float64) Option {
	return func(e *Engine) { e.pageRank = pr }
}

// WithExpander overrides the default query expander (New()).
func WithExpander(exp *queryexpand.Expander) Option {
	return func(e *Engine) { e.expand = exp }
}

// New builds an Engine. embed and vectors may be nil when the
// embedding capability is absent: Hybrid then degrades to
// keyword-only automatically, matching spec.md's "absence of the
// capability costs recall, never correctness" rule.
func New(keyword KeywordSearcher, vectors VectorSearcher, nodes NodeLookup, embed embedder.Embedder, opts ...Option) *Engine {
	e := &Engine{keyword: keyword, vectors: vectors, nodes: nodes, embed: embed, expand: queryexpand.New()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Search is the fast mode: keyword-only, no fusion. Contract is
// sub-10ms typical since it skips embedding and the semantic index
// entirely.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	hits, err := e.keyword.KeywordSearch(ctx, e.expandedQuery(query), limit)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Node: h.Node, FusedScore: h.Score, KeywordRank: i + 1, KeywordScore: h.Score, Origin: OriginKeyword}
	}
	return results, nil
}

// HybridOptions configures Hybrid's two primitive searches.
type HybridOptions struct {
	KeywordLimit int // default 50
	SemanticTopK int // default 50
}

// Hybrid runs keyword and semantic search and fuses them with
// reciprocal rank fusion (k=60), rank-1/2-3 bonuses, ties broken by
// PageRank then node id. When the embedder or vector index is absent,
// this degrades to the keyword list alone.
func (e *Engine) Hybrid(ctx context.Context, query string, opts HybridOptions) ([]Result, error) {
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = 50
	}
	if opts.SemanticTopK <= 0 {
		opts.SemanticTopK = defaultSemanticTopK
	}

	keywordHits, err := e.keyword.KeywordSearch(ctx, e.expandedQuery(query), opts.KeywordLimit)
	if err != nil {
		return nil, err
	}

	var semanticHits []vectorindex.Hit
	if e.embed != nil && e.vectors != nil {
		vec, err := e.embed.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		semanticHits = e.vectors.Query(vec, opts.SemanticTopK)
	}

	return e.fuse(ctx, keywordHits, semanticHits)
}

// expandedQuery joins the expanded term multiset into an FTS5 MATCH
// expression, OR-ing every term once so any expansion can contribute a
// match. Term boosts are not passed to FTS5, so exact and derived
// terms weigh the same in bm25 ranking.
func (e *Engine) expandedQuery(query string) string {
	expanded := e.expand.Expand(query)
	if len(expanded.Terms) == 0 {
		return query
	}
	var b []byte
	for i, t := range expanded.Terms {
		if i > 0 {
			b = append(b, " OR "...)
		}
		b = append(b, '"')
		b = append(b, t.Text...)
		b = append(b, '"')
	}
	return string(b)
}

func (e *Engine) lookupNode(ctx context.Context, id types.NodeID) (types.Node, bool) {
	if e.nodes == nil {
		return types.Node{}, false
	}
	n, err := e.nodes.GetNode(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return types.Node{}, false
		}
		return types.Node{}, false
	}
	return *n, true
}
