package mcp

import (
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResponse marshals data as the tool's single text content block,
// the plain (non-error) result shape every handler returns on success.
func jsonResponse(data any) (*sdkmcp.CallToolResult, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(body)}},
	}, nil
}

// errorResponse reports a tool-level failure inside the result object
// with IsError set, per the MCP SDK contract: protocol-level errors
// hide the failure from the calling model, so tool failures must be
// ordinary (non-error) JSON-RPC results with IsError=true instead.
func errorResponse(op string, err error) (*sdkmcp.CallToolResult, error) {
	body, marshalErr := json.Marshal(map[string]any{
		"success":   false,
		"operation": op,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(body)}},
		IsError: true,
	}, nil
}
