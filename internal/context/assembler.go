// Package context assembles a token-budgeted context window from a
// ranked retrieval candidate set: full source for the strongest
// matches, signatures of their direct neighbors, referencing tests and
// file siblings, and a compact project listing, in that priority
// order, each tier donating unused budget to the next.
package context

import (
	"context"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// Tier names the four priority bands of the assembled window.
type Tier string

const (
	TierCore       Tier = "core"
	TierNear       Tier = "near"
	TierExtended   Tier = "extended"
	TierBackground Tier = "background"
)

const (
	coreShare       = 0.40
	nearShare       = 0.25
	extendedShare   = 0.20
	backgroundShare = 0.15
)

// minCoreCandidateTokens is the smallest Core budget, and the smallest
// remaining Core budget, at which another Core candidate is seated; it
// does not bound the size of a candidate's source. Below it (an
// unusually small budget), Core is skipped entirely and Near absorbs
// its whole share instead of seating one truncated fragment that
// wouldn't help a reader anyway.
const minCoreCandidateTokens = 40

// nearHopDepth is how many edges out Near looks for callers/callees of
// a Core candidate.
const nearHopDepth = 1

// Item is one piece of assembled context.
type Item struct {
	Tier   Tier
	NodeID types.NodeID
	Path   string
	Name   string
	Text   string
	Tokens int
}

// Assembled is one complete context window.
type Assembled struct {
	Query  string
	Budget int
	Items  []Item
	Used   int
}

// Store is the subset of internal/store the assembler needs.
type Store interface {
	GetNode(ctx context.Context, id types.NodeID) (*types.Node, error)
	NodesByFileID(ctx context.Context, fileID types.FileID) ([]types.Node, error)
	IncomingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error)
}

// GraphEngine is the subset of internal/graph the Near tier needs.
type GraphEngine interface {
	Callers(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error)
	Callees(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error)
}

// Assembler fills Core/Near/Extended/Background tiers from a ranked
// candidate set up to a total token budget.
type Assembler struct {
	store  Store
	graph  GraphEngine
	source SourceReader
	dirs   DirectoryLister
}

// New returns an Assembler wired to its four collaborators.
func New(store Store, g GraphEngine, source SourceReader, dirs DirectoryLister) *Assembler {
	return &Assembler{store: store, graph: g, source: source, dirs: dirs}
}

// tierBudgets splits total into the four tier shares. Background
// absorbs the rounding remainder, keeping the split deterministic and
// exactly summing to total.
func tierBudgets(total int) map[Tier]int {
	core := int(float64(total) * coreShare)
	near := int(float64(total) * nearShare)
	extended := int(float64(total) * extendedShare)
	background := total - core - near - extended
	return map[Tier]int{TierCore: core, TierNear: near, TierExtended: extended, TierBackground: background}
}

// Assemble runs the four-tier fill algorithm against candidates
// (already ranked, typically via retrieval.Engine.Hybrid) within
// budget total tokens.
func (a *Assembler) Assemble(ctx context.Context, query string, candidates []retrieval.Result, budget int) (Assembled, error) {
	shares := tierBudgets(budget)
	seen := map[types.NodeID]bool{}

	coreItems, coreLeftover, err := a.fillCore(candidates, shares[TierCore], seen)
	if err != nil {
		return Assembled{}, err
	}

	nearBudget := shares[TierNear] + coreLeftover
	nearItems, nearLeftover, err := a.fillNear(ctx, coreItems, nearBudget, seen)
	if err != nil {
		return Assembled{}, err
	}

	extendedBudget := shares[TierExtended] + nearLeftover
	extendedItems, extendedLeftover, err := a.fillExtended(ctx, coreItems, extendedBudget, seen)
	if err != nil {
		return Assembled{}, err
	}

	backgroundBudget := shares[TierBackground] + extendedLeftover
	backgroundItems, err := a.fillBackground(backgroundBudget)
	if err != nil {
		return Assembled{}, err
	}

	var items []Item
	items = append(items, coreItems...)
	items = append(items, nearItems...)
	items = append(items, extendedItems...)
	items = append(items, backgroundItems...)

	used := 0
	for _, it := range items {
		used += it.Tokens
	}

	// Adaptive redistribution guarantees each tier never overspends
	// its own (possibly donated) allotment, so the sum never exceeds
	// budget; trim Background first in the defensive case it does.
	items, used = trimToBudget(items, budget, used)

	return Assembled{Query: query, Budget: budget, Items: items, Used: used}, nil
}

// fillCore seats full source text of the top candidates until the
// Core tier's budget is spent, skipping any candidate whose source
// can't be read. It returns the items placed, the unspent remainder,
// and marks every placed node as seen.
func (a *Assembler) fillCore(candidates []retrieval.Result, budget int, seen map[types.NodeID]bool) ([]Item, int, error) {
	if budget < minCoreCandidateTokens {
		return nil, budget, nil
	}

	var items []Item
	remaining := budget
	for _, c := range candidates {
		if remaining < minCoreCandidateTokens {
			break
		}
		if seen[c.Node.ID] {
			continue
		}
		text, err := a.source.ReadRange(c.Node.Path, c.Node.Pos.StartByte, c.Node.Pos.EndByte)
		if err != nil || text == "" {
			continue
		}
		tok := CountTokens(text)
		if tok > remaining {
			continue
		}
		items = append(items, Item{Tier: TierCore, NodeID: c.Node.ID, Path: c.Node.Path, Name: c.Node.Name, Text: text, Tokens: tok})
		seen[c.Node.ID] = true
		remaining -= tok
	}
	return items, remaining, nil
}

// fillNear seats signatures of the direct callers and callees of every
// Core candidate, nearest (by discovery order) first.
func (a *Assembler) fillNear(ctx context.Context, core []Item, budget int, seen map[types.NodeID]bool) ([]Item, int, error) {
	if a.graph == nil {
		return nil, budget, nil
	}

	var items []Item
	remaining := budget
	for _, c := range core {
		neighbors, err := a.neighborNodes(ctx, c.NodeID)
		if err != nil {
			return nil, remaining, err
		}
		for _, n := range neighbors {
			if remaining <= 0 {
				return items, remaining, nil
			}
			if seen[n.ID] || n.Signature == "" {
				continue
			}
			tok := CountTokens(n.Signature)
			if tok > remaining {
				continue
			}
			items = append(items, Item{Tier: TierNear, NodeID: n.ID, Path: n.Path, Name: n.Name, Text: n.Signature, Tokens: tok})
			seen[n.ID] = true
			remaining -= tok
		}
	}
	return items, remaining, nil
}

func (a *Assembler) neighborNodes(ctx context.Context, id types.NodeID) ([]types.Node, error) {
	callers, err := a.graph.Callers(ctx, id, nearHopDepth)
	if err != nil {
		return nil, err
	}
	callees, err := a.graph.Callees(ctx, id, nearHopDepth)
	if err != nil {
		return nil, err
	}

	var out []types.Node
	for _, hop := range append(callers, callees...) {
		node, err := a.store.GetNode(ctx, hop.Node)
		if err != nil || node == nil {
			continue
		}
		out = append(out, *node)
	}
	return out, nil
}

// fillExtended seats tests that reference each Core candidate and
// sibling declarations from its file, as compact signatures.
func (a *Assembler) fillExtended(ctx context.Context, core []Item, budget int, seen map[types.NodeID]bool) ([]Item, int, error) {
	var items []Item
	remaining := budget

	for _, c := range core {
		tests, err := a.store.IncomingEdges(ctx, c.NodeID, []types.EdgeKind{types.EdgeTests})
		if err != nil {
			return nil, remaining, err
		}
		for _, edge := range tests {
			if remaining <= 0 {
				return items, remaining, nil
			}
			node, err := a.store.GetNode(ctx, edge.SourceID)
			if err != nil || node == nil || seen[node.ID] || node.Signature == "" {
				continue
			}
			tok := CountTokens(node.Signature)
			if tok > remaining {
				continue
			}
			items = append(items, Item{Tier: TierExtended, NodeID: node.ID, Path: node.Path, Name: node.Name, Text: node.Signature, Tokens: tok})
			seen[node.ID] = true
			remaining -= tok
		}

		node, err := a.store.GetNode(ctx, c.NodeID)
		if err != nil || node == nil {
			continue
		}
		siblings, err := a.store.NodesByFileID(ctx, node.FileID)
		if err != nil {
			return nil, remaining, err
		}
		for _, sib := range siblings {
			if remaining <= 0 {
				return items, remaining, nil
			}
			if sib.ID == node.ID || seen[sib.ID] || sib.Signature == "" {
				continue
			}
			tok := CountTokens(sib.Signature)
			if tok > remaining {
				continue
			}
			items = append(items, Item{Tier: TierExtended, NodeID: sib.ID, Path: sib.Path, Name: sib.Name, Text: sib.Signature, Tokens: tok})
			seen[sib.ID] = true
			remaining -= tok
		}
	}
	return items, remaining, nil
}

// fillBackground renders the compact directory listing within its
// (possibly donation-enlarged) budget.
func (a *Assembler) fillBackground(budget int) ([]Item, error) {
	if a.dirs == nil || budget <= 0 {
		return nil, nil
	}
	const approxTokensPerLine = 6
	maxLines := budget / approxTokensPerLine
	if maxLines <= 0 {
		maxLines = 1
	}
	listing, err := a.dirs.List(maxLines)
	if err != nil || listing == "" {
		return nil, err
	}
	tok := CountTokens(listing)
	if tok > budget {
		return nil, nil
	}
	return []Item{{Tier: TierBackground, Name: "project-layout", Text: listing, Tokens: tok}}, nil
}

// trimToBudget drops Background items first, then Extended, then
// Near, if the assembled total somehow still exceeds budget.
func trimToBudget(items []Item, budget, used int) ([]Item, int) {
	if used <= budget {
		return items, used
	}
	for _, tier := range []Tier{TierBackground, TierExtended, TierNear} {
		for i := len(items) - 1; i >= 0 && used > budget; i-- {
			if items[i].Tier != tier {
				continue
			}
			used -= items[i].Tokens
			items = append(items[:i], items[i+1:]...)
		}
		if used <= budget {
			break
		}
	}
	return items, used
}
