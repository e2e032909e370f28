package retrieval

import (
	"context"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/codegraph-dev/codegraph/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyword struct {
	hits []store.KeywordHit
}

func (f *fakeKeyword) KeywordSearch(ctx context.Context, query string, limit int) ([]store.KeywordHit, error) {
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type fakeVectors struct {
	hits []vectorindex.Hit
}

func (f *fakeVectors) Query(query []float32, topK int) []vectorindex.Hit {
	if topK < len(f.hits) {
		return f.hits[:topK]
	}
	return f.hits
}

type fakeNodes struct {
	byID map[types.NodeID]types.Node
}

func (f *fakeNodes) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return &n, nil
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

type fakeEmbedder struct{}

func (fakeEmbedder) Dim() int { return 4 }
func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func TestSearchFastModeKeywordOnly(t *testing.T) {
	kw := &fakeKeyword{hits: []store.KeywordHit{
		{Node: types.Node{ID: 1, Name: "Foo"}, Score: 2.0},
		{Node: types.Node{ID: 2, Name: "Bar"}, Score: 1.0},
	}}
	e := New(kw, nil, nil, nil)
	results, err := e.Search(context.Background(), "foo", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, OriginKeyword, results[0].Origin)
	assert.Equal(t, 1, results[0].KeywordRank)
}

func TestHybridDegradesToKeywordWithoutEmbedder(t *testing.T) {
	kw := &fakeKeyword{hits: []store.KeywordHit{{Node: types.Node{ID: 1}, Score: 5.0}}}
	e := New(kw, nil, nil, nil)
	results, err := e.Hybrid(context.Background(), "foo", HybridOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OriginKeyword, results[0].Origin)
}

func TestHybridFusesBothLists(t *testing.T) {
	kw := &fakeKeyword{hits: []store.KeywordHit{
		{Node: types.Node{ID: 1, Name: "Foo"}, Score: 5.0},
		{Node: types.Node{ID: 2, Name: "Bar"}, Score: 3.0},
	}}
	vec := &fakeVectors{hits: []vectorindex.Hit{
		{Node: 1, Score: 0.9},
		{Node: 3, Score: 0.8},
	}}
	nodes := &fakeNodes{byID: map[types.NodeID]types.Node{3: {ID: 3, Name: "Baz"}}}
	e := New(kw, vec, nodes, fakeEmbedder{})

	results, err := e.Hybrid(context.Background(), "foo", HybridOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := map[types.NodeID]Result{}
	for _, r := range results {
		byID[r.Node.ID] = r
	}

	assert.Equal(t, OriginBoth, byID[1].Origin)
	assert.Equal(t, OriginKeyword, byID[2].Origin)
	assert.Equal(t, OriginSemantic, byID[3].Origin)
	assert.Equal(t, "Baz", byID[3].Node.Name)

	// Node 1 appears in both lists at rank 1 so it must fuse to the top score.
	assert.Equal(t, types.NodeID(1), results[0].Node.ID)
}

func TestFusionTieBreaksByPageRankThenNodeID(t *testing.T) {
	// Node 5 ranks 1st in the keyword list, node 7 ranks 1st in the
	// semantic list: both receive an identical rank-1 RRF
	// contribution, so the fused scores tie and PageRank must decide.
	keywordHits := []store.KeywordHit{{Node: types.Node{ID: 5}, Score: 1.0}}
	semanticHits := []vectorindex.Hit{{Node: 7, Score: 1.0}}

	nodes := &fakeNodes{byID: map[types.NodeID]types.Node{7: {ID: 7}}}
	e := New(&fakeKeyword{}, &fakeVectors{}, nodes, nil, WithPageRank(map[types.NodeID]float64{7: 0.9, 5: 0.1}))

	results, err := e.fuse(context.Background(), keywordHits, semanticHits)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, results[0].FusedScore, results[1].FusedScore, 1e-9)
	assert.Equal(t, types.NodeID(7), results[0].Node.ID)
}

func TestRRFContributionRank1Bonus(t *testing.T) {
	r1 := rrfContribution(1)
	r2 := rrfContribution(2)
	r4 := rrfContribution(4)
	assert.Greater(t, r1, r2)
	assert.Greater(t, r2, r4)
}
