package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/metrics"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
)

const defaultSearchLimit = 20

func (s *Server) searchTools() []Tool {
	return []Tool{
		{
			Name:        "search",
			Description: "Keyword or hybrid (keyword+semantic, fused) code search.",
			Category:    CategorySearch,
			Priority:    100,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"pattern":  {Type: "string", Description: "Search query"},
				"max":      {Type: "integer", Description: "Maximum results (default 20)"},
				"semantic": {Type: "boolean", Description: "Fuse in semantic (vector) results"},
			}, "pattern"),
			Handler: (*Server).handleSearch,
		},
	}
}

type searchParams struct {
	Pattern  string `json:"pattern"`
	Max      int    `json:"max"`
	Semantic bool   `json:"semantic"`
}

func (s *Server) handleSearch(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	mode := "fast"
	defer func(start time.Time) { metrics.ObserveQueryLatency(mode, start) }(time.Now())

	var p searchParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("search", fmt.Errorf("invalid parameters: %w", err))
	}
	if p.Pattern == "" {
		return errorResponse("search", fmt.Errorf("pattern is required"))
	}
	limit := p.Max
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var results []retrieval.Result
	var err error
	if p.Semantic {
		mode = "hybrid"
		results, err = s.search.Hybrid(ctx, p.Pattern, retrieval.HybridOptions{KeywordLimit: limit})
	} else {
		results, err = s.search.Search(ctx, p.Pattern, limit)
	}
	if err != nil {
		return errorResponse("search", err)
	}
	return jsonResponse(map[string]any{"pattern": p.Pattern, "results": results})
}
