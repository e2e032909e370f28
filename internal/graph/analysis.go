package graph

import (
	"context"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// ImpactLevel categorizes the blast radius of a change at a node.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// Impact summarizes the blast radius of changing target: everything
// that transitively depends on it via calls or imports.
type Impact struct {
	Target        types.NodeID
	Direct        int
	Transitive    int
	AffectedFiles int
	Level         ImpactLevel
}

// Impact reports the size of target's transitive reverse closure over
// calls ∪ imports, per spec's blast-radius definition. high/medium
// thresholds are caller-supplied (config.Analysis) rather than fixed
// constants.
func (e *Engine) Impact(ctx context.Context, target types.NodeID, highThreshold, mediumThreshold int) (Impact, error) {
	direct, err := e.edgesFor(ctx, target, []types.EdgeKind{types.EdgeCalls, types.EdgeImports}, true)
	if err != nil {
		return Impact{}, err
	}

	hops, err := e.bfs(ctx, target, maxTraversalDepth, []types.EdgeKind{types.EdgeCalls, types.EdgeImports}, true)
	if err != nil {
		return Impact{}, err
	}

	files := map[types.FileID]bool{}
	for _, hop := range hops {
		if n, err := e.store.GetNode(ctx, hop.Node); err == nil && n != nil {
			files[n.FileID] = true
		}
	}

	level := ImpactLow
	switch {
	case len(hops) >= highThreshold:
		level = ImpactHigh
	case len(hops) >= mediumThreshold:
		level = ImpactMedium
	}

	return Impact{
		Target:        target,
		Direct:        len(direct),
		Transitive:    len(hops),
		AffectedFiles: len(files),
		Level:         level,
	}, nil
}

// maxTraversalDepth bounds closure computations (Impact) that must
// visit the whole reachable set rather than a
// caller-chosen number of hops; |V| nodes is always enough to reach
// every node once thanks to the visited-set guard in bfs.
const maxTraversalDepth = 1 << 20

// SCC is one strongly connected component of size ≥ 2 in the imports
// subgraph — a circular-import cycle.
type SCC struct {
	Nodes []types.NodeID
}

// CircularImports returns every strongly connected component of size
// ≥ 2 in the `imports` subgraph, via Tarjan's algorithm run
// iteratively (explicit stack) so deep import chains cannot overflow
// the goroutine stack.
func (e *Engine) CircularImports(ctx context.Context) ([]SCC, error) {
	ids, err := e.store.AllNodeIDs(ctx)
	if err != nil {
		return nil, err
	}
	adj, err := e.adjacency(ctx, []types.EdgeKind{types.EdgeImports})
	if err != nil {
		return nil, err
	}

	t := &tarjan{
		adj:     adj,
		index:   map[types.NodeID]int{},
		lowlink: map[types.NodeID]int{},
		onStack: map[types.NodeID]bool{},
	}
	for _, id := range ids {
		if _, seen := t.index[id]; !seen {
			t.strongConnect(id)
		}
	}

	var out []SCC
	for _, comp := range t.components {
		if len(comp) >= 2 {
			out = append(out, SCC{Nodes: comp})
		}
	}
	return out, nil
}

// adjacency builds a forward adjacency list for the given edge kinds
// across the whole graph, used by analyses that must see the entire
// graph rather than walk outward from one node.
func (e *Engine) adjacency(ctx context.Context, kinds []types.EdgeKind) (map[types.NodeID][]types.NodeID, error) {
	edges, err := e.store.AllEdges(ctx, kinds)
	if err != nil {
		return nil, err
	}
	adj := make(map[types.NodeID][]types.NodeID, len(edges))
	for _, edge := range edges {
		adj[edge.SourceID] = append(adj[edge.SourceID], edge.TargetID)
	}
	return adj, nil
}

// tarjan holds the iterative strongly-connected-components state for
// one CircularImports run.
type tarjan struct {
	adj        map[types.NodeID][]types.NodeID
	index      map[types.NodeID]int
	lowlink    map[types.NodeID]int
	onStack    map[types.NodeID]bool
	stack      []types.NodeID
	counter    int
	components [][]types.NodeID
}

// frame is one explicit-stack call frame standing in for a recursive
// strongConnect(v) invocation paused at its i'th neighbor.
type frame struct {
	v types.NodeID
	i int
}

func (t *tarjan) strongConnect(start types.NodeID) {
	var work []frame
	push := func(v types.NodeID) {
		t.index[v] = t.counter
		t.lowlink[v] = t.counter
		t.counter++
		t.stack = append(t.stack, v)
		t.onStack[v] = true
		work = append(work, frame{v: v, i: 0})
	}
	push(start)

	for len(work) > 0 {
		top := &work[len(work)-1]
		neighbors := t.adj[top.v]

		if top.i < len(neighbors) {
			w := neighbors[top.i]
			top.i++
			if _, seen := t.index[w]; !seen {
				push(w)
				continue
			} else if t.onStack[w] {
				if t.index[w] < t.lowlink[top.v] {
					t.lowlink[top.v] = t.index[w]
				}
			}
			continue
		}

		// All neighbors of top.v processed; pop and propagate lowlink.
		work = work[:len(work)-1]
		if len(work) > 0 {
			parent := &work[len(work)-1]
			if t.lowlink[top.v] < t.lowlink[parent.v] {
				t.lowlink[parent.v] = t.lowlink[top.v]
			}
		}

		if t.lowlink[top.v] == t.index[top.v] {
			var comp []types.NodeID
			for {
				n := len(t.stack) - 1
				w := t.stack[n]
				t.stack = t.stack[:n]
				t.onStack[w] = false
				comp = append(comp, w)
				if w == top.v {
					break
				}
			}
			t.components = append(t.components, comp)
		}
	}
}

// pageRankDamping and pageRankMaxIterations implement spec.md's fixed
// power-iteration constants for PageRank.
const (
	pageRankDamping       = 0.85
	pageRankMaxIterations = 100
	pageRankConvergence   = 1e-6
)

// PageRank computes the classic power-iteration PageRank over the
// directed calls+imports graph, rebuilt fresh from the store for this
// call. Dangling nodes (no outgoing edges) redistribute their mass
// uniformly, the standard fix for rank leakage.
func (e *Engine) PageRank(ctx context.Context) (map[types.NodeID]float64, error) {
	ids, err := e.store.AllNodeIDs(ctx)
	if err != nil {
		return nil, err
	}
	adj, err := e.adjacency(ctx, []types.EdgeKind{types.EdgeCalls, types.EdgeImports})
	if err != nil {
		return nil, err
	}

	n := len(ids)
	if n == 0 {
		return map[types.NodeID]float64{}, nil
	}

	rank := make(map[types.NodeID]float64, n)
	for _, id := range ids {
		rank[id] = 1.0 / float64(n)
	}

	for iter := 0; iter < pageRankMaxIterations; iter++ {
		next := make(map[types.NodeID]float64, n)
		base := (1 - pageRankDamping) / float64(n)
		for _, id := range ids {
			next[id] = base
		}

		var danglingMass float64
		for _, id := range ids {
			out := adj[id]
			if len(out) == 0 {
				danglingMass += rank[id]
				continue
			}
			share := pageRankDamping * rank[id] / float64(len(out))
			for _, target := range out {
				next[target] += share
			}
		}
		if danglingMass > 0 {
			share := pageRankDamping * danglingMass / float64(n)
			for _, id := range ids {
				next[id] += share
			}
		}

		var maxDelta float64
		for _, id := range ids {
			delta := next[id] - rank[id]
			if delta < 0 {
				delta = -delta
			}
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		rank = next
		if maxDelta < pageRankConvergence {
			break
		}
	}
	return rank, nil
}

// deadCodeKinds are the symbol kinds dead-code analysis considers;
// variables, constants and types are never reported even if unused.
var deadCodeKinds = map[types.NodeKind]bool{
	types.KindFunction: true,
	types.KindMethod:   true,
	types.KindClass:    true,
}

// DeadCode returns nodes of kinds {function, method, class} with no
// inbound calls, references, or tests edge, excluding exported
// symbols, configured entry-point qualified names, and test-tagged
// artifacts.
func (e *Engine) DeadCode(ctx context.Context, entryPoints []string) ([]types.NodeID, error) {
	ids, err := e.store.AllNodeIDs(ctx)
	if err != nil {
		return nil, err
	}
	entry := make(map[string]bool, len(entryPoints))
	for _, name := range entryPoints {
		entry[name] = true
	}

	kinds := []types.EdgeKind{types.EdgeCalls, types.EdgeReferences, types.EdgeTests}
	var dead []types.NodeID
	for _, id := range ids {
		node, err := e.store.GetNode(ctx, id)
		if err != nil || node == nil {
			continue
		}
		if !deadCodeKinds[node.Kind] || node.Exported || node.TestArtifact || entry[node.QualifiedName] {
			continue
		}
		inbound, err := e.store.IncomingEdges(ctx, id, kinds)
		if err != nil {
			return nil, err
		}
		if len(inbound) == 0 {
			dead = append(dead, id)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i] < dead[j] })
	return dead, nil
}
