package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/internal/config"
	cgcontext "github.com/codegraph-dev/codegraph/internal/context"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
	"github.com/codegraph-dev/codegraph/internal/types"
)

type fakeSearcher struct {
	results []retrieval.Result
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]retrieval.Result, error) {
	return f.results, nil
}

func (f *fakeSearcher) Hybrid(ctx context.Context, query string, opts retrieval.HybridOptions) ([]retrieval.Result, error) {
	return f.results, nil
}

type fakeGraphReader struct {
	callers []graph.Hop
}

func (f *fakeGraphReader) Callers(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
	return f.callers, nil
}
func (f *fakeGraphReader) Callees(ctx context.Context, symbol types.NodeID, depth int) ([]graph.Hop, error) {
	return nil, nil
}
func (f *fakeGraphReader) Dependencies(ctx context.Context, target types.NodeID, depth int) ([]graph.Hop, error) {
	return nil, nil
}
func (f *fakeGraphReader) FindPath(ctx context.Context, a, b types.NodeID) ([]types.Edge, error) {
	return nil, nil
}
func (f *fakeGraphReader) Impact(ctx context.Context, target types.NodeID, high, medium int) (graph.Impact, error) {
	return graph.Impact{Target: target, Level: graph.ImpactLow}, nil
}
func (f *fakeGraphReader) CircularImports(ctx context.Context) ([]graph.SCC, error) { return nil, nil }
func (f *fakeGraphReader) PageRank(ctx context.Context) (map[types.NodeID]float64, error) {
	return map[types.NodeID]float64{1: 0.5, 2: 0.5}, nil
}
func (f *fakeGraphReader) DeadCode(ctx context.Context, entryPoints []string) ([]types.NodeID, error) {
	return nil, nil
}

type fakeAssembler struct{}

func (fakeAssembler) Assemble(ctx context.Context, query string, candidates []retrieval.Result, budget int) (cgcontext.Assembled, error) {
	return cgcontext.Assembled{Query: query, Budget: budget}, nil
}

type fakeNodeStore struct {
	byName map[string][]types.Node
}

func (f *fakeNodeStore) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	return &types.Node{ID: id}, nil
}
func (f *fakeNodeStore) NodesByQualifiedName(ctx context.Context, qualifiedName string) ([]types.Node, error) {
	return f.byName[qualifiedName], nil
}
func (f *fakeNodeStore) GetFileByPath(ctx context.Context, path string) (*types.FileRecord, error) {
	return &types.FileRecord{ID: 1, Path: path}, nil
}
func (f *fakeNodeStore) NodesByFileID(ctx context.Context, fileID types.FileID) ([]types.Node, error) {
	return []types.Node{{ID: 1, FileID: fileID}}, nil
}

func newTestServer(cfg *config.Config) *Server {
	store := &fakeNodeStore{byName: map[string][]types.Node{
		"pkg.Foo": {{ID: 1, QualifiedName: "pkg.Foo"}},
	}}
	return NewServer(cfg, &fakeSearcher{}, &fakeGraphReader{callers: []graph.Hop{{Node: 2, Depth: 1}}}, fakeAssembler{}, store, nil)
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	req := &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: name, Arguments: raw}}

	for _, tool := range s.registry() {
		if tool.Name == name {
			result, err := tool.Handler(s, context.Background(), req)
			require.NoError(t, err)
			return result
		}
	}
	t.Fatalf("no tool named %q", name)
	return nil
}

func TestHandleCallersResolvesSymbolAndWalksGraph(t *testing.T) {
	s := newTestServer(config.Default())
	result := callTool(t, s, "callers", map[string]any{"symbol": "pkg.Foo"})
	assert.False(t, result.IsError)

	text := result.Content[0].(*sdkmcp.TextContent).Text
	assert.Contains(t, text, "\"callers\"")
}

func TestHandleCallersReportsUnknownSymbol(t *testing.T) {
	s := newTestServer(config.Default())
	result := callTool(t, s, "callers", map[string]any{"symbol": "pkg.Missing"})
	assert.True(t, result.IsError)
}

func TestFilterToolsAppliesPresetMinimal(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Preset = config.PresetMinimal
	s := newTestServer(cfg)

	kept := filterTools(s.registry(), cfg)
	for _, tool := range kept {
		assert.Contains(t, []Category{CategorySearch, CategoryContext}, tool.Category)
	}
}

func TestFilterToolsMaxToolCountDropsLowestPriorityFirst(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Preset = config.PresetFull
	cfg.Performance.MaxToolCount = 1
	s := newTestServer(cfg)

	kept := filterTools(s.registry(), cfg)
	require.Len(t, kept, 1)
	assert.Equal(t, "search", kept[0].Name)
}

func TestFilterToolsPerToolOverrideWins(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Preset = config.PresetMinimal
	cfg.Tools.Overrides = map[string]bool{"find_symbol": true}
	s := newTestServer(cfg)

	kept := filterTools(s.registry(), cfg)
	var foundFindSymbol bool
	for _, tool := range kept {
		if tool.Name == "find_symbol" {
			foundFindSymbol = true
		}
	}
	assert.True(t, foundFindSymbol)
}
