package context

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	nodes    map[types.NodeID]types.Node
	siblings map[types.FileID][]types.Node
	tests    map[types.NodeID][]types.Edge
}

func (f *fakeStore) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	n, ok := f.nodes[id]
	if !ok {
		return nil, fmt.Errorf("not found: %d", id)
	}
	return &n, nil
}

func (f *fakeStore) NodesByFileID(ctx context.Context, fileID types.FileID) ([]types.Node, error) {
	return f.siblings[fileID], nil
}

func (f *fakeStore) IncomingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	return f.tests[id], nil
}

type fakeGraph struct {
	callers map[types.NodeID][]graph.Hop
	callees map[types.NodeID][]graph.Hop
}

func (f *fakeGraph) Callers(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
	return f.callers[symbol], nil
}

func (f *fakeGraph) Callees(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
	return f.callees[symbol], nil
}

type fakeSource struct {
	text map[types.NodeID]string
	byPath map[string]string
}

func (f *fakeSource) ReadRange(path string, startByte, endByte int) (string, error) {
	full, ok := f.byPath[path]
	if !ok {
		return "", fmt.Errorf("no file %s", path)
	}
	if endByte > len(full) {
		endByte = len(full)
	}
	return full[startByte:endByte], nil
}

type fakeDirs struct{ listing string }

func (f *fakeDirs) List(maxLines int) (string, error) { return f.listing, nil }

func newFixture() (*fakeStore, *fakeGraph, *fakeSource) {
	store := &fakeStore{
		nodes:    map[types.NodeID]types.Node{},
		siblings: map[types.FileID][]types.Node{},
		tests:    map[types.NodeID][]types.Edge{},
	}
	graphEng := &fakeGraph{callers: map[types.NodeID][]graph.Hop{}, callees: map[types.NodeID][]graph.Hop{}}
	source := &fakeSource{text: map[types.NodeID]string{}, byPath: map[string]string{}}
	return store, graphEng, source
}

func TestAssembleFillsCoreFirst(t *testing.T) {
	store, graphEng, source := newFixture()
	body := "func Target() { return }"
	source.byPath["a.go"] = body
	store.nodes[1] = types.Node{ID: 1, FileID: 10, Path: "a.go", Name: "Target", Signature: "func Target()",
		Pos: types.Position{StartByte: 0, EndByte: len(body)}}

	asm := New(store, graphEng, source, nil)
	candidates := []retrieval.Result{{Node: store.nodes[1]}}

	out, err := asm.Assemble(context.Background(), "target", candidates, 1000)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, TierCore, out.Items[0].Tier)
	assert.Equal(t, body, out.Items[0].Text)
}

func TestAssembleNearSeatsCallersAndCallees(t *testing.T) {
	store, graphEng, source := newFixture()
	body := "func Target() {}"
	source.byPath["a.go"] = body
	store.nodes[1] = types.Node{ID: 1, FileID: 10, Path: "a.go", Name: "Target", Signature: "func Target()",
		Pos: types.Position{StartByte: 0, EndByte: len(body)}}
	store.nodes[2] = types.Node{ID: 2, FileID: 11, Path: "b.go", Name: "Caller", Signature: "func Caller()"}
	store.nodes[3] = types.Node{ID: 3, FileID: 12, Path: "c.go", Name: "Callee", Signature: "func Callee()"}
	graphEng.callers[1] = []graph.Hop{{Node: 2, Depth: 1}}
	graphEng.callees[1] = []graph.Hop{{Node: 3, Depth: 1}}

	asm := New(store, graphEng, source, nil)
	candidates := []retrieval.Result{{Node: store.nodes[1]}}

	out, err := asm.Assemble(context.Background(), "target", candidates, 1000)
	require.NoError(t, err)

	var nearNames []string
	for _, it := range out.Items {
		if it.Tier == TierNear {
			nearNames = append(nearNames, it.Name)
		}
	}
	assert.ElementsMatch(t, []string{"Caller", "Callee"}, nearNames)
}

func TestAssembleExtendedSeatsTestsAndSiblings(t *testing.T) {
	store, graphEng, source := newFixture()
	body := "func Target() {}"
	source.byPath["a.go"] = body
	store.nodes[1] = types.Node{ID: 1, FileID: 10, Path: "a.go", Name: "Target", Signature: "func Target()",
		Pos: types.Position{StartByte: 0, EndByte: len(body)}}
	store.nodes[4] = types.Node{ID: 4, FileID: 10, Path: "a.go", Name: "Sibling", Signature: "func Sibling()"}
	store.nodes[5] = types.Node{ID: 5, FileID: 20, Path: "a_test.go", Name: "TestTarget", Signature: "func TestTarget(t *testing.T)"}
	store.siblings[10] = []types.Node{store.nodes[1], store.nodes[4]}
	store.tests[1] = []types.Edge{{SourceID: 5, TargetID: 1, Kind: types.EdgeTests}}

	asm := New(store, graphEng, source, nil)
	candidates := []retrieval.Result{{Node: store.nodes[1]}}

	out, err := asm.Assemble(context.Background(), "target", candidates, 1000)
	require.NoError(t, err)

	var extendedNames []string
	for _, it := range out.Items {
		if it.Tier == TierExtended {
			extendedNames = append(extendedNames, it.Name)
		}
	}
	assert.ElementsMatch(t, []string{"Sibling", "TestTarget"}, extendedNames)
}

func TestAssembleBackgroundUsesDirectoryListing(t *testing.T) {
	store, graphEng, source := newFixture()
	dirs := &fakeDirs{listing: "internal/ (2 files)\n  a.go\n  b.go\n"}
	asm := New(store, graphEng, source, dirs)

	out, err := asm.Assemble(context.Background(), "anything", nil, 1000)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, TierBackground, out.Items[0].Tier)
	assert.Contains(t, out.Items[0].Text, "internal/")
}

func TestAssembleSkipsCoreWhenBudgetTooSmall(t *testing.T) {
	store, graphEng, source := newFixture()
	body := strings.Repeat("x", 400)
	source.byPath["a.go"] = body
	store.nodes[1] = types.Node{ID: 1, FileID: 10, Path: "a.go", Name: "Target",
		Pos: types.Position{StartByte: 0, EndByte: len(body)}}
	graphEng.callers[1] = nil
	graphEng.callees[1] = nil

	asm := New(store, graphEng, source, nil)
	candidates := []retrieval.Result{{Node: store.nodes[1]}}

	// Budget so small that Core's 40% share is under minCoreCandidateTokens.
	out, err := asm.Assemble(context.Background(), "target", candidates, 50)
	require.NoError(t, err)
	for _, it := range out.Items {
		assert.NotEqual(t, TierCore, it.Tier)
	}
}

func TestAssembleNeverExceedsBudget(t *testing.T) {
	store, graphEng, source := newFixture()
	body := strings.Repeat("func Target() { doWork() }\n", 20)
	source.byPath["a.go"] = body
	store.nodes[1] = types.Node{ID: 1, FileID: 10, Path: "a.go", Name: "Target", Signature: "func Target()",
		Pos: types.Position{StartByte: 0, EndByte: len(body)}}
	dirs := &fakeDirs{listing: strings.Repeat("pkg/ (1 files)\n  x.go\n", 50)}

	asm := New(store, graphEng, source, dirs)
	candidates := []retrieval.Result{{Node: store.nodes[1]}}

	out, err := asm.Assemble(context.Background(), "target", candidates, 200)
	require.NoError(t, err)
	assert.LessOrEqual(t, out.Used, 200)
}

func TestCountTokensDeterministic(t *testing.T) {
	text := "func Foo(bar int) (baz string, err error) { return }"
	a := CountTokens(text)
	b := CountTokens(text)
	assert.Equal(t, a, b)
	assert.Greater(t, a, 0)
}

func TestCountTokensEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 0, CountTokens("   \n\t"))
}
