package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/types"
)

const defaultPageRankLimit = 20

func (s *Server) analysisTools() []Tool {
	return []Tool{
		{
			Name:        "impact",
			Description: "Blast-radius of changing a symbol: direct/transitive reverse-closure size and a risk level.",
			Category:    CategoryAnalysis, Priority: 75,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"symbol": {Type: "string", Description: "Qualified symbol name"},
			}, "symbol"),
			Handler: (*Server).handleImpact,
		},
		{
			Name:        "circular_imports",
			Description: "Strongly connected components (size ≥ 2) in the imports subgraph.",
			Category:    CategoryAnalysis, Priority: 50,
			InputSchema: schemaObject(nil),
			Handler:     (*Server).handleCircularImports,
		},
		{
			Name:        "pagerank",
			Description: "Top symbols by PageRank over the calls+imports graph.",
			Category:    CategoryAnalysis, Priority: 40,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"limit": {Type: "integer", Description: "Maximum symbols to return (default 20)"},
			}),
			Handler: (*Server).handlePageRank,
		},
		{
			Name:        "dead_code",
			Description: "Functions/methods/classes with no inbound calls, references, or tests.",
			Category:    CategoryAnalysis, Priority: 55,
			InputSchema: schemaObject(nil),
			Handler:     (*Server).handleDeadCode,
		},
	}
}

type impactParams struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleImpact(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p impactParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("impact", fmt.Errorf("invalid parameters: %w", err))
	}
	id, err := s.resolveSymbol(ctx, p.Symbol)
	if err != nil {
		return errorResponse("impact", err)
	}
	impact, err := s.graph.Impact(ctx, id, s.cfg.Analysis.ImpactHighThreshold, s.cfg.Analysis.ImpactMediumThreshold)
	if err != nil {
		return errorResponse("impact", err)
	}
	return jsonResponse(impact)
}

func (s *Server) handleCircularImports(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	sccs, err := s.graph.CircularImports(ctx)
	if err != nil {
		return errorResponse("circular_imports", err)
	}
	return jsonResponse(map[string]any{"cycles": sccs})
}

type pageRankParams struct {
	Limit int `json:"limit"`
}

func (s *Server) handlePageRank(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p pageRankParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("pagerank", fmt.Errorf("invalid parameters: %w", err))
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageRankLimit
	}

	ranks, err := s.graph.PageRank(ctx)
	if err != nil {
		return errorResponse("pagerank", err)
	}

	type ranked struct {
		Node types.NodeID `json:"node"`
		Rank float64      `json:"rank"`
	}
	out := make([]ranked, 0, len(ranks))
	for id, r := range ranks {
		out = append(out, ranked{Node: id, Rank: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Node < out[j].Node
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return jsonResponse(map[string]any{"ranks": out})
}

func (s *Server) handleDeadCode(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	dead, err := s.graph.DeadCode(ctx, s.cfg.Analysis.EntryPoints)
	if err != nil {
		return errorResponse("dead_code", err)
	}
	return jsonResponse(map[string]any{"dead": dead})
}
