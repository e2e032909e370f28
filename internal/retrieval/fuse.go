package retrieval

import (
	"context"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/codegraph-dev/codegraph/internal/vectorindex"
)

const (
	rrfK             = 60.0
	rrfRank1Bonus    = 0.05
	rrfRank2To3Bonus = 0.02
)

// rrfContribution is the per-list reciprocal-rank-fusion term for a
// 1-indexed rank, including the top-rank bonuses from spec.md §4.H,
// applied before summation across lists.
func rrfContribution(rank int) float64 {
	score := 1.0 / (rrfK + float64(rank))
	switch {
	case rank == 1:
		score += rrfRank1Bonus
	case rank == 2, rank == 3:
		score += rrfRank2To3Bonus
	}
	return score
}

func (e *Engine) fuse(ctx context.Context, keywordHits []store.KeywordHit, semanticHits []vectorindex.Hit) ([]Result, error) {
	byID := make(map[types.NodeID]*Result)
	order := make([]types.NodeID, 0, len(keywordHits)+len(semanticHits))

	get := func(id types.NodeID) *Result {
		if r, ok := byID[id]; ok {
			return r
		}
		r := &Result{}
		byID[id] = r
		order = append(order, id)
		return r
	}

	for i, h := range keywordHits {
		r := get(h.Node.ID)
		r.Node = h.Node
		r.KeywordRank = i + 1
		r.KeywordScore = h.Score
		r.FusedScore += rrfContribution(i + 1)
	}

	for i, h := range semanticHits {
		r := get(h.Node)
		if r.Node.ID == 0 {
			if n, ok := e.lookupNode(ctx, h.Node); ok {
				r.Node = n
			} else {
				r.Node = types.Node{ID: h.Node}
			}
		}
		r.SemanticRank = i + 1
		r.FusedScore += rrfContribution(i + 1)
	}

	results := make([]Result, 0, len(order))
	for _, id := range order {
		r := byID[id]
		switch {
		case r.KeywordRank > 0 && r.SemanticRank > 0:
			r.Origin = OriginBoth
		case r.KeywordRank > 0:
			r.Origin = OriginKeyword
		default:
			r.Origin = OriginSemantic
		}
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		pa, pb := e.pageRank[a.Node.ID], e.pageRank[b.Node.ID]
		if pa != pb {
			return pa > pb
		}
		return a.Node.ID < b.Node.ID
	})

	return results, nil
}
