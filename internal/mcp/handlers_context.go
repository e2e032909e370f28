package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/retrieval"
)

const defaultContextBudget = 4000

func (s *Server) contextTools() []Tool {
	return []Tool{
		{
			Name:        "get_context",
			Description: "Assemble a token-budgeted context window (source, signatures, tests, project layout) for a query.",
			Category:    CategoryContext, Priority: 95,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"query":  {Type: "string", Description: "Natural-language or keyword query"},
				"budget": {Type: "integer", Description: "Total token budget (default 4000)"},
			}, "query"),
			Handler: (*Server).handleGetContext,
		},
	}
}

type getContextParams struct {
	Query  string `json:"query"`
	Budget int    `json:"budget"`
}

func (s *Server) handleGetContext(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p getContextParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("get_context", fmt.Errorf("invalid parameters: %w", err))
	}
	if p.Query == "" {
		return errorResponse("get_context", fmt.Errorf("query is required"))
	}
	budget := p.Budget
	if budget <= 0 {
		budget = defaultContextBudget
	}

	candidates, err := s.search.Hybrid(ctx, p.Query, retrieval.HybridOptions{})
	if err != nil {
		return errorResponse("get_context", err)
	}

	assembled, err := s.assemb.Assemble(ctx, p.Query, candidates, budget)
	if err != nil {
		return errorResponse("get_context", err)
	}
	return jsonResponse(assembled)
}
