package display

import (
	"context"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNodes struct{ nodes map[types.NodeID]types.Node }

func (f *fakeNodes) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	n := f.nodes[id]
	return &n, nil
}

func TestBuildTreeExpandsOneHopAtATime(t *testing.T) {
	nodes := &fakeNodes{nodes: map[types.NodeID]types.Node{
		1: {ID: 1, QualifiedName: "pkg.Root"},
		2: {ID: 2, QualifiedName: "pkg.Child"},
		3: {ID: 3, QualifiedName: "pkg.Grandchild"},
	}}
	calls := map[types.NodeID][]graph.Hop{
		1: {{Node: 2, Depth: 1}},
		2: {{Node: 3, Depth: 1}},
	}
	walk := func(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
		return calls[symbol], nil
	}

	tree, err := BuildTree(context.Background(), walk, nodes, 1, 2)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "pkg.Child", tree.Children[0].Node.QualifiedName)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "pkg.Grandchild", tree.Children[0].Children[0].Node.QualifiedName)
}

func TestBuildTreeStopsAtMaxDepth(t *testing.T) {
	nodes := &fakeNodes{nodes: map[types.NodeID]types.Node{
		1: {ID: 1, QualifiedName: "pkg.Root"},
		2: {ID: 2, QualifiedName: "pkg.Child"},
	}}
	calls := map[types.NodeID][]graph.Hop{1: {{Node: 2, Depth: 1}}}
	walk := func(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
		return calls[symbol], nil
	}

	tree, err := BuildTree(context.Background(), walk, nodes, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, tree.Children)
}

func TestBuildTreeIsCycleSafe(t *testing.T) {
	nodes := &fakeNodes{nodes: map[types.NodeID]types.Node{
		1: {ID: 1, QualifiedName: "pkg.A"},
		2: {ID: 2, QualifiedName: "pkg.B"},
	}}
	calls := map[types.NodeID][]graph.Hop{
		1: {{Node: 2, Depth: 1}},
		2: {{Node: 1, Depth: 1}},
	}
	walk := func(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
		return calls[symbol], nil
	}

	tree, err := BuildTree(context.Background(), walk, nodes, 1, 5)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Empty(t, tree.Children[0].Children)
}

func TestFormatTreeRendersBranches(t *testing.T) {
	root := &TreeNode{
		Node: types.Node{QualifiedName: "pkg.Root"},
		Children: []*TreeNode{
			{Node: types.Node{QualifiedName: "pkg.A", Path: "a.go"}},
			{Node: types.Node{QualifiedName: "pkg.B", Path: "b.go"}},
		},
	}
	out := FormatTree(root)
	assert.Contains(t, out, "pkg.Root")
	assert.Contains(t, out, "├─ pkg.A")
	assert.Contains(t, out, "└─ pkg.B")
}

func TestFormatTreeNilIsEmpty(t *testing.T) {
	assert.Equal(t, "(empty)", FormatTree(nil))
}
