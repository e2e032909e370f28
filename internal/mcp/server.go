package mcp

import (
	"context"
	"log"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/config"
	cgcontext "github.com/codegraph-dev/codegraph/internal/context"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// Searcher is the subset of internal/retrieval.Engine the search tools need.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]retrieval.Result, error)
	Hybrid(ctx context.Context, query string, opts retrieval.HybridOptions) ([]retrieval.Result, error)
}

// GraphReader is the subset of internal/graph.Engine the call-graph
// and analysis tools need.
type GraphReader interface {
	Callers(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error)
	Callees(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error)
	Dependencies(ctx context.Context, target types.NodeID, depth int) ([]graph.Hop, error)
	FindPath(ctx context.Context, a, b types.NodeID) ([]types.Edge, error)
	Impact(ctx context.Context, target types.NodeID, highThreshold, mediumThreshold int) (graph.Impact, error)
	CircularImports(ctx context.Context) ([]graph.SCC, error)
	PageRank(ctx context.Context) (map[types.NodeID]float64, error)
	DeadCode(ctx context.Context, entryPoints []string) ([]types.NodeID, error)
}

// ContextAssembler is the subset of internal/context.Assembler the
// context tool needs.
type ContextAssembler interface {
	Assemble(ctx context.Context, query string, candidates []retrieval.Result, budget int) (cgcontext.Assembled, error)
}

// NodeStore is the subset of internal/store.Store the repository tools need.
type NodeStore interface {
	GetNode(ctx context.Context, id types.NodeID) (*types.Node, error)
	NodesByQualifiedName(ctx context.Context, qualifiedName string) ([]types.Node, error)
	GetFileByPath(ctx context.Context, path string) (*types.FileRecord, error)
	NodesByFileID(ctx context.Context, fileID types.FileID) ([]types.Node, error)
}

// Server wires the core engines to the MCP tool-call surface.
type Server struct {
	server *sdkmcp.Server
	cfg    *config.Config
	search Searcher
	graph  GraphReader
	assemb ContextAssembler
	store  NodeStore
	logger *log.Logger
}

// NewServer builds the tool registry from cfg, filters it per preset/
// category/tool overrides and performance.max_tool_count, and
// registers the survivors with the underlying SDK server.
func NewServer(cfg *config.Config, search Searcher, g GraphReader, assemb ContextAssembler, store NodeStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		search: search,
		graph:  g,
		assemb: assemb,
		store:  store,
		logger: logger,
	}

	s.server = sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "codegraph-mcp-server",
		Version: "0.1.0",
	}, nil)

	for _, tool := range filterTools(s.registry(), cfg) {
		tool := tool
		s.server.AddTool(&sdkmcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			return tool.Handler(s, ctx, req)
		})
	}
	s.logger.Printf("mcp: registered tools for preset %s", cfg.Tools.Preset)

	return s
}

// Start runs the server over stdio until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	return s.server.Run(ctx, &sdkmcp.StdioTransport{})
}

func schemaObject(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

// registry builds the full, unfiltered tool list. Security and Git
// register zero tools by default — both are out-of-scope collaborators
// per spec.md §1 — but remain real filterable categories so
// max_tool_count priority-drop has uniform categories to reason about.
func (s *Server) registry() []Tool {
	var tools []Tool
	tools = append(tools, s.repositoryTools()...)
	tools = append(tools, s.searchTools()...)
	tools = append(tools, s.callGraphTools()...)
	tools = append(tools, s.analysisTools()...)
	tools = append(tools, s.contextTools()...)
	return tools
}
