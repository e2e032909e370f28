// Package graph implements the relational traversal operations:
// callers, callees, dependencies, impact, shortest path,
// circular-imports, PageRank, and dead-code detection. Every
// operation builds its adjacency fresh from the store for the call it
// serves — no owning in-memory graph is held between calls, so the
// data is never stale relative to the last write.
package graph

import (
	"context"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// Store is the subset of internal/store traversal needs.
type Store interface {
	OutgoingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error)
	IncomingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error)
	AllNodeIDs(ctx context.Context) ([]types.NodeID, error)
	AllEdges(ctx context.Context, kinds []types.EdgeKind) ([]types.Edge, error)
	GetNode(ctx context.Context, id types.NodeID) (*types.Node, error)
}

// Engine runs traversal operations against a Store.
type Engine struct {
	store Store
}

// New returns an Engine backed by store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Hop pairs a reached node with its distance (in edges) from the
// traversal origin.
type Hop struct {
	Node  types.NodeID
	Depth int
}

// Callers returns every node that reaches symbol via `calls` edges,
// reverse-BFS bounded to depth hops.
func (e *Engine) Callers(ctx context.Context, symbol types.NodeID, depth int) ([]Hop, error) {
	return e.bfs(ctx, symbol, depth, []types.EdgeKind{types.EdgeCalls}, true)
}

// Callees returns every node symbol reaches via `calls` edges,
// forward-BFS bounded to depth hops.
func (e *Engine) Callees(ctx context.Context, symbol types.NodeID, depth int) ([]Hop, error) {
	return e.bfs(ctx, symbol, depth, []types.EdgeKind{types.EdgeCalls}, false)
}

// Dependencies returns nodes reachable forward from target over
// `imports` ∪ `calls`.
func (e *Engine) Dependencies(ctx context.Context, target types.NodeID, depth int) ([]Hop, error) {
	return e.bfs(ctx, target, depth, []types.EdgeKind{types.EdgeImports, types.EdgeCalls}, false)
}

// bfs is cycle-safe: a visited set guards against revisiting a node,
// so repeat edges (including cycles back to the origin) are ignored.
func (e *Engine) bfs(ctx context.Context, start types.NodeID, depth int, kinds []types.EdgeKind, reverse bool) ([]Hop, error) {
	if depth < 0 {
		depth = 0
	}
	visited := map[types.NodeID]bool{start: true}
	frontier := []types.NodeID{start}
	var hops []Hop

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []types.NodeID
		for _, id := range frontier {
			edges, err := e.edgesFor(ctx, id, kinds, reverse)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				neighbor := edge.TargetID
				if reverse {
					neighbor = edge.SourceID
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				hops = append(hops, Hop{Node: neighbor, Depth: d})
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return hops, nil
}

func (e *Engine) edgesFor(ctx context.Context, id types.NodeID, kinds []types.EdgeKind, reverse bool) ([]types.Edge, error) {
	if reverse {
		return e.store.IncomingEdges(ctx, id, kinds)
	}
	return e.store.OutgoingEdges(ctx, id, kinds)
}

// pathParent records, for one BFS run, the edge used to first reach a
// node and the node it came from.
type pathParent struct {
	from types.NodeID
	via  types.Edge
}

// FindPath returns the shortest edge sequence from a to b (forward
// over all edge kinds), or nil when b is unreachable.
func (e *Engine) FindPath(ctx context.Context, a, b types.NodeID) ([]types.Edge, error) {
	if a == b {
		return nil, nil
	}
	parents := map[types.NodeID]pathParent{}
	visited := map[types.NodeID]bool{a: true}
	frontier := []types.NodeID{a}

	for len(frontier) > 0 {
		var next []types.NodeID
		for _, id := range frontier {
			edges, err := e.store.OutgoingEdges(ctx, id, nil)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				if visited[edge.TargetID] {
					continue
				}
				visited[edge.TargetID] = true
				parents[edge.TargetID] = pathParent{from: id, via: edge}
				if edge.TargetID == b {
					return reconstructPath(parents, a, b), nil
				}
				next = append(next, edge.TargetID)
			}
		}
		frontier = next
	}
	return nil, nil
}

func reconstructPath(parents map[types.NodeID]pathParent, start, target types.NodeID) []types.Edge {
	var path []types.Edge
	for cur := target; cur != start; {
		p := parents[cur]
		path = append([]types.Edge{p.via}, path...)
		cur = p.from
	}
	return path
}
