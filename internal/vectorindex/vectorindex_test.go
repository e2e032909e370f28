package vectorindex

import (
	"context"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	vecs map[types.NodeID][]float32
}

func (f fakeSource) AllNodeVectors(ctx context.Context) (map[types.NodeID][]float32, error) {
	return f.vecs, nil
}

func TestQueryRanksBySimilarity(t *testing.T) {
	src := fakeSource{vecs: map[types.NodeID][]float32{
		1: {1, 0, 0},
		2: {0, 1, 0},
		3: {0.9, 0.1, 0},
	}}
	idx := New()
	require.NoError(t, idx.Refresh(context.Background(), src))
	assert.Equal(t, 3, idx.Len())

	hits := idx.Query([]float32{1, 0, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, types.NodeID(1), hits[0].Node)
	assert.Equal(t, types.NodeID(3), hits[1].Node)
}

func TestQueryEmpty(t *testing.T) {
	idx := New()
	assert.Nil(t, idx.Query([]float32{1, 2}, 5))
	assert.Nil(t, idx.Query(nil, 5))
}
