package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultHopDepth = 2

func (s *Server) callGraphTools() []Tool {
	symbolDepthSchema := schemaObject(map[string]*jsonschema.Schema{
		"symbol": {Type: "string", Description: "Qualified symbol name"},
		"depth":  {Type: "integer", Description: "Bounded hop depth (default 2)"},
	}, "symbol")

	return []Tool{
		{
			Name: "callers", Description: "Reverse call-graph BFS: who calls this symbol.",
			Category: CategoryCallGraph, Priority: 90, InputSchema: symbolDepthSchema,
			Handler: (*Server).handleCallers,
		},
		{
			Name: "callees", Description: "Forward call-graph BFS: what this symbol calls.",
			Category: CategoryCallGraph, Priority: 90, InputSchema: symbolDepthSchema,
			Handler: (*Server).handleCallees,
		},
		{
			Name: "dependencies", Description: "Forward closure over imports and calls.",
			Category: CategoryCallGraph, Priority: 85, InputSchema: symbolDepthSchema,
			Handler: (*Server).handleDependencies,
		},
		{
			Name:        "find_path",
			Description: "Shortest edge path between two symbols, if any.",
			Category:    CategoryCallGraph, Priority: 60,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"from": {Type: "string", Description: "Qualified name of the source symbol"},
				"to":   {Type: "string", Description: "Qualified name of the target symbol"},
			}, "from", "to"),
			Handler: (*Server).handleFindPath,
		},
	}
}

type symbolDepthParams struct {
	Symbol string `json:"symbol"`
	Depth  int    `json:"depth"`
}

func (p symbolDepthParams) depthOrDefault() int {
	if p.Depth <= 0 {
		return defaultHopDepth
	}
	return p.Depth
}

func (s *Server) handleCallers(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p symbolDepthParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("callers", fmt.Errorf("invalid parameters: %w", err))
	}
	id, err := s.resolveSymbol(ctx, p.Symbol)
	if err != nil {
		return errorResponse("callers", err)
	}
	hops, err := s.graph.Callers(ctx, id, p.depthOrDefault())
	if err != nil {
		return errorResponse("callers", err)
	}
	return jsonResponse(map[string]any{"symbol": p.Symbol, "callers": hops})
}

func (s *Server) handleCallees(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p symbolDepthParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("callees", fmt.Errorf("invalid parameters: %w", err))
	}
	id, err := s.resolveSymbol(ctx, p.Symbol)
	if err != nil {
		return errorResponse("callees", err)
	}
	hops, err := s.graph.Callees(ctx, id, p.depthOrDefault())
	if err != nil {
		return errorResponse("callees", err)
	}
	return jsonResponse(map[string]any{"symbol": p.Symbol, "callees": hops})
}

func (s *Server) handleDependencies(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p symbolDepthParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("dependencies", fmt.Errorf("invalid parameters: %w", err))
	}
	id, err := s.resolveSymbol(ctx, p.Symbol)
	if err != nil {
		return errorResponse("dependencies", err)
	}
	hops, err := s.graph.Dependencies(ctx, id, p.depthOrDefault())
	if err != nil {
		return errorResponse("dependencies", err)
	}
	return jsonResponse(map[string]any{"symbol": p.Symbol, "dependencies": hops})
}

type findPathParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleFindPath(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p findPathParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("find_path", fmt.Errorf("invalid parameters: %w", err))
	}
	from, err := s.resolveSymbol(ctx, p.From)
	if err != nil {
		return errorResponse("find_path", err)
	}
	to, err := s.resolveSymbol(ctx, p.To)
	if err != nil {
		return errorResponse("find_path", err)
	}
	path, err := s.graph.FindPath(ctx, from, to)
	if err != nil {
		return errorResponse("find_path", err)
	}
	return jsonResponse(map[string]any{"from": p.From, "to": p.To, "path": path})
}
