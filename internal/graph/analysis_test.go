package graph

import (
	"context"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/types"
)

func TestImpactCategorizesByTransitiveCount(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1, Kind: types.KindFunction, QualifiedName: "pkg.Target"})
	store.addNode(types.Node{ID: 2, Kind: types.KindFunction, QualifiedName: "pkg.Caller"})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 1, Kind: types.EdgeCalls})
	e := New(store)

	impact, err := e.Impact(context.Background(), 1, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if impact.Direct != 1 || impact.Transitive != 1 {
		t.Fatalf("got %+v", impact)
	}
	if impact.Level != ImpactMedium {
		t.Fatalf("expected medium, got %s", impact.Level)
	}
}

func TestCircularImportsFindsCycle(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1, FileID: 1})
	store.addNode(types.Node{ID: 2, FileID: 2})
	store.addNode(types.Node{ID: 3, FileID: 3})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeImports})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 1, Kind: types.EdgeImports})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 3, Kind: types.EdgeImports})
	e := New(store)

	sccs, err := e.CircularImports(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sccs) != 1 || len(sccs[0].Nodes) != 2 {
		t.Fatalf("expected one 2-node SCC, got %+v", sccs)
	}
}

func TestPageRankSumsToOne(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1})
	store.addNode(types.Node{ID: 2})
	store.addNode(types.Node{ID: 3})
	store.addEdge(types.Edge{SourceID: 1, TargetID: 2, Kind: types.EdgeCalls})
	store.addEdge(types.Edge{SourceID: 2, TargetID: 3, Kind: types.EdgeCalls})
	store.addEdge(types.Edge{SourceID: 3, TargetID: 1, Kind: types.EdgeCalls})
	e := New(store)

	ranks, err := e.PageRank(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, r := range ranks {
		sum += r
	}
	if sum < 0.99 || sum > 1.01 {
		t.Fatalf("expected ranks to sum near 1, got %f", sum)
	}
}

func TestDeadCodeExcludesExportedEntryPointsAndTests(t *testing.T) {
	store := newFakeStore()
	store.addNode(types.Node{ID: 1, Kind: types.KindFunction, QualifiedName: "pkg.unused", Exported: false})
	store.addNode(types.Node{ID: 2, Kind: types.KindFunction, QualifiedName: "pkg.Exported", Exported: true})
	store.addNode(types.Node{ID: 3, Kind: types.KindFunction, QualifiedName: "main.main", Exported: false})
	store.addNode(types.Node{ID: 4, Kind: types.KindFunction, QualifiedName: "pkg.testHelper", Exported: false, TestArtifact: true})
	store.addNode(types.Node{ID: 5, Kind: types.KindVariable, QualifiedName: "pkg.unusedVar", Exported: false})
	e := New(store)

	dead, err := e.DeadCode(context.Background(), []string{"main.main"})
	if err != nil {
		t.Fatal(err)
	}
	if len(dead) != 1 || dead[0] != 1 {
		t.Fatalf("expected only node 1 dead, got %v", dead)
	}
}
