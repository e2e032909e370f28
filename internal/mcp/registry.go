// Package mcp exposes the core engine over the Model Context Protocol:
// a registry of named tool-call operations, filtered by preset and
// per-category/per-tool configuration, served over stdio.
package mcp

import (
	"context"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/config"
)

// Category partitions the tool-call surface for enable/disable and
// priority-drop, per spec.md §6.
type Category string

const (
	CategoryRepository Category = "Repository"
	CategorySearch     Category = "Search"
	CategoryCallGraph  Category = "CallGraph"
	CategoryAnalysis   Category = "Analysis"
	CategorySecurity   Category = "Security"
	CategoryGit        Category = "Git"
	CategoryContext    Category = "Context"
)

// allCategories lists every category so priority-drop and preset
// filtering have a uniform set to reason about, even ones (Security,
// Git) that register zero tools by default.
var allCategories = []Category{
	CategoryRepository, CategorySearch, CategoryCallGraph,
	CategoryAnalysis, CategorySecurity, CategoryGit, CategoryContext,
}

// Tool is one value in the registry: a named operation with a
// capability set, per spec.md §9's "polymorphism across tools" design
// note. The server iterates the registry rather than switching on
// tool name at the framing layer.
type Tool struct {
	Name        string
	Description string
	Category    Category
	// Priority ranks tools across all enabled categories for
	// max_tool_count priority-drop; higher survives longer.
	Priority    int
	InputSchema *jsonschema.Schema
	Handler     func(s *Server, ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error)
}

// presetCategories are the categories a preset enables by default,
// before per-category and per-tool overrides apply.
func presetCategories(preset config.Preset) map[Category]bool {
	switch preset {
	case config.PresetMinimal:
		return map[Category]bool{CategorySearch: true, CategoryContext: true}
	case config.PresetFull:
		enabled := map[Category]bool{}
		for _, c := range allCategories {
			enabled[c] = true
		}
		return enabled
	case config.PresetSecurityFocused:
		return map[Category]bool{
			CategorySecurity: true, CategoryRepository: true,
			CategorySearch: true, CategoryGit: true,
		}
	case config.PresetBalanced:
		fallthrough
	default:
		return map[Category]bool{
			CategoryRepository: true, CategorySearch: true,
			CategoryCallGraph: true, CategoryContext: true,
			CategoryAnalysis: true,
		}
	}
}

// filterTools applies preset → per-category override → per-tool
// override → max_tool_count priority-drop, in that order, matching
// spec.md §6's configuration priority.
func filterTools(all []Tool, cfg *config.Config) []Tool {
	enabled := presetCategories(cfg.Tools.Preset)
	for cat, on := range cfg.Tools.Category {
		enabled[Category(cat)] = on
	}

	var kept []Tool
	for _, t := range all {
		on := enabled[t.Category]
		if override, ok := cfg.Tools.Overrides[t.Name]; ok {
			on = override
		}
		if on {
			kept = append(kept, t)
		}
	}

	maxCount := cfg.Performance.MaxToolCount
	if maxCount <= 0 || len(kept) <= maxCount {
		return kept
	}

	// Lowest-priority tools drop first; ties keep registration order
	// stable via a stable sort.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Priority > kept[j].Priority })
	return kept[:maxCount]
}
