package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// fakeStore is an in-memory Store for exercising traversal and
// analysis logic without a real database.
type fakeStore struct {
	nodes map[types.NodeID]types.Node
	edges []types.Edge
}

func newFakeStore() *fakeStore {
	return &fakeStore{nodes: map[types.NodeID]types.Node{}}
}

func (s *fakeStore) addNode(n types.Node) {
	s.nodes[n.ID] = n
}

func (s *fakeStore) addEdge(e types.Edge) {
	s.edges = append(s.edges, e)
}

func (s *fakeStore) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *fakeStore) AllNodeIDs(ctx context.Context) ([]types.NodeID, error) {
	ids := make([]types.NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeStore) AllEdges(ctx context.Context, kinds []types.EdgeKind) ([]types.Edge, error) {
	if len(kinds) == 0 {
		return s.edges, nil
	}
	return filterEdges(s.edges, kinds), nil
}

func (s *fakeStore) OutgoingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	var out []types.Edge
	for _, e := range filterEdges(s.edges, kinds) {
		if e.SourceID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) IncomingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	var in []types.Edge
	for _, e := range filterEdges(s.edges, kinds) {
		if e.TargetID == id {
			in = append(in, e)
		}
	}
	return in, nil
}

func filterEdges(edges []types.Edge, kinds []types.EdgeKind) []types.Edge {
	if len(kinds) == 0 {
		return edges
	}
	allowed := make(map[types.EdgeKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	var out []types.Edge
	for _, e := range edges {
		if allowed[e.Kind] {
			out = append(out, e)
		}
	}
	return out
}

func TestCalleesFollowsCallsEdgesForward(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1, QualifiedName: "pkg.A"})
	store.addNode(types.Node{ID: 2, QualifiedName: "pkg.B"})
	store.addNode(types.Node{ID: 3, QualifiedName: "pkg.C"})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeCalls})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 3, Kind: types.EdgeCalls})
	e := New(store)

	hops, err := e.Callees(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, hops, 2)
	assert.Equal(t, types.NodeID(2), hops[0].Node)
	assert.Equal(t, 1, hops[0].Depth)
	assert.Equal(t, types.NodeID(3), hops[1].Node)
	assert.Equal(t, 2, hops[1].Depth)
}

func TestCallersFollowsCallsEdgesBackward(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1, QualifiedName: "pkg.A"})
	store.addNode(types.Node{ID: 2, QualifiedName: "pkg.B"})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeCalls})
	e := New(store)

	hops, err := e.Callers(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, hops, 1)
	assert.Equal(t, types.NodeID(1), hops[0].Node)
}

func TestBFSIsCycleSafe(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1})
	store.addNode(types.Node{ID: 2})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeCalls})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 1, Kind: types.EdgeCalls})
	e := New(store)

	hops, err := e.Callees(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, hops, 1)
	assert.Equal(t, types.NodeID(2), hops[0].Node)
}

func TestFindPathReturnsShortestEdgeSequence(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1})
	store.addNode(types.Node{ID: 2})
	store.addNode(types.Node{ID: 3})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeCalls})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 3, Kind: types.EdgeImports})
	e := New(store)

	path, err := e.FindPath(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, types.NodeID(2), path[0].TargetID)
	assert.Equal(t, types.NodeID(3), path[1].TargetID)
}

func TestFindPathSameNodeIsNil(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1})
	e := New(store)

	path, err := e.FindPath(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestFindPathUnreachableIsNil(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1})
	store.addNode(types.Node{ID: 2})
	e := New(store)

	path, err := e.FindPath(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, path)
}
