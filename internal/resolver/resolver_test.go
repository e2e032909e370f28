package resolver

import (
	"context"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byName   map[string][]types.Node
	resolved []types.Edge
	pending  []types.UnresolvedRef
}

func newFakeStore() *fakeStore { return &fakeStore{byName: map[string][]types.Node{}} }

func (f *fakeStore) NodesByQualifiedName(ctx context.Context, qualifiedName string) ([]types.Node, error) {
	return f.byName[qualifiedName], nil
}

func (f *fakeStore) ResolveRef(ctx context.Context, refID int64, edge types.Edge) error {
	f.resolved = append(f.resolved, edge)
	return nil
}

func (f *fakeStore) UnresolvedRefsForFiles(ctx context.Context, fileIDs []types.FileID) ([]types.UnresolvedRef, error) {
	return f.pending, nil
}

func TestResolveFileLocalMatch(t *testing.T) {
	store := newFakeStore()
	r := New()

	localNodes := []types.Node{
		{ID: 1, Name: "a", Path: "calls.go"},
		{ID: 2, Name: "b", Path: "calls.go"},
	}
	sites := []parser.CallSite{{SourceIndex: 0, TargetName: "b", Line: 4}}

	bindings := r.ResolveFile(context.Background(), store, "calls.go", localNodes, []types.NodeID{1, 2}, sites)
	require.Len(t, bindings, 1)
	assert.True(t, bindings[0].Resolved)
	assert.Equal(t, types.NodeID(2), bindings[0].Edge.TargetID)
	assert.Equal(t, types.EdgeCalls, bindings[0].Edge.Kind)
}

func TestResolveFileFallsBackToUnresolved(t *testing.T) {
	store := newFakeStore()
	r := New()

	localNodes := []types.Node{{ID: 1, Name: "a", Path: "calls.go"}}
	sites := []parser.CallSite{{SourceIndex: 0, TargetName: "mystery", Line: 1}}

	bindings := r.ResolveFile(context.Background(), store, "calls.go", localNodes, []types.NodeID{1}, sites)
	require.Len(t, bindings, 1)
	assert.False(t, bindings[0].Resolved)
	assert.Equal(t, "mystery", bindings[0].Ref.TextualTarget)
}

func TestResolveFileWithPathAlias(t *testing.T) {
	store := newFakeStore()
	store.byName["src/util.Helper"] = []types.Node{{ID: 9, Name: "Helper", Path: "src/util.go", Exported: true}}

	r := New(WithPathAliases(map[string]string{"@/": "src/"}))
	localNodes := []types.Node{{ID: 1, Name: "caller", Path: "app/main.go"}}
	sites := []parser.CallSite{{SourceIndex: 0, TargetName: "@/util.Helper", Line: 2}}

	bindings := r.ResolveFile(context.Background(), store, "app/main.go", localNodes, []types.NodeID{1}, sites)
	require.Len(t, bindings, 1)
	assert.True(t, bindings[0].Resolved)
	assert.Equal(t, types.NodeID(9), bindings[0].Edge.TargetID)
}

func TestHTTPHandlerResolver(t *testing.T) {
	hr := HTTPHandlerResolver{}
	qn, ok := hr.ResolveRoute("server/router.go", "HandleUsers")
	assert.True(t, ok)
	assert.Equal(t, "router.HandleUsers", qn)

	_, ok = hr.ResolveRoute("server/router.go", "compute")
	assert.False(t, ok)
}

func TestDecoratorRouteResolver(t *testing.T) {
	dr := DecoratorRouteResolver{}
	qn, ok := dr.ResolveRoute("api/views.py", "get_users")
	assert.True(t, ok)
	assert.Equal(t, "views.get_users", qn)

	_, ok = dr.ResolveRoute("api/views.py", "helper")
	assert.False(t, ok)
}

func TestRetryResolvesPendingRefs(t *testing.T) {
	store := newFakeStore()
	store.byName["widget.Build"] = []types.Node{{ID: 5, Name: "Build"}}
	store.pending = []types.UnresolvedRef{{ID: 11, SourceID: 3, TextualTarget: "widget.Build"}}
	r := New()

	n, err := r.Retry(context.Background(), store, []types.FileID{1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.resolved, 1)
	assert.Equal(t, types.NodeID(3), store.resolved[0].SourceID)
	assert.Equal(t, types.NodeID(5), store.resolved[0].TargetID)
}
