package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) repositoryTools() []Tool {
	return []Tool{
		{
			Name:        "find_symbol",
			Description: "Look up symbols by qualified name (e.g. \"pkg.Type.Method\").",
			Category:    CategoryRepository,
			Priority:    80,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"name": {Type: "string", Description: "Qualified symbol name"},
			}, "name"),
			Handler: (*Server).handleFindSymbol,
		},
		{
			Name:        "file_symbols",
			Description: "List every symbol declared in one file, ordered by position.",
			Category:    CategoryRepository,
			Priority:    70,
			InputSchema: schemaObject(map[string]*jsonschema.Schema{
				"path": {Type: "string", Description: "Project-relative file path"},
			}, "path"),
			Handler: (*Server).handleFileSymbols,
		},
	}
}

type findSymbolParams struct {
	Name string `json:"name"`
}

func (s *Server) handleFindSymbol(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p findSymbolParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("find_symbol", fmt.Errorf("invalid parameters: %w", err))
	}

	nodes, err := s.store.NodesByQualifiedName(ctx, p.Name)
	if err != nil {
		return errorResponse("find_symbol", err)
	}
	return jsonResponse(map[string]any{"symbols": nodes})
}

type fileSymbolsParams struct {
	Path string `json:"path"`
}

func (s *Server) handleFileSymbols(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p fileSymbolsParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResponse("file_symbols", fmt.Errorf("invalid parameters: %w", err))
	}

	file, err := s.store.GetFileByPath(ctx, p.Path)
	if err != nil {
		return errorResponse("file_symbols", err)
	}
	nodes, err := s.store.NodesByFileID(ctx, file.ID)
	if err != nil {
		return errorResponse("file_symbols", err)
	}
	return jsonResponse(map[string]any{"path": p.Path, "symbols": nodes})
}
