package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// loadProjectKDL reads the per-project config file (.codegraph.kdl).
// A missing file is not an error: it returns (nil, nil).
func loadProjectKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	def := Default()
	cfg := &Config{
		Index:    def.Index,
		Tools:    Tools{Category: map[string]bool{}, Overrides: map[string]bool{}},
		Contexts: map[string]string{},
	}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch kdlNodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignKDLString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignKDLString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			parseKDLIndex(cfg, n.Children)
		case "performance":
			parseKDLPerformance(cfg, n.Children)
		case "tools":
			parseKDLTools(cfg, n.Children)
		case "include":
			for _, a := range n.Arguments {
				if s, ok := a.Value.(string); ok {
					cfg.Include = append(cfg.Include, s)
				}
			}
		case "exclude":
			for _, a := range n.Arguments {
				if s, ok := a.Value.(string); ok {
					cfg.Exclude = append(cfg.Exclude, s)
				}
			}
		case "contexts":
			for _, cn := range n.Children {
				if s, ok := kdlFirstStringArg(cn); ok {
					cfg.Contexts[kdlNodeName(cn)] = s
				}
			}
		}
	}
	return cfg, nil
}

func parseKDLIndex(cfg *Config, children []*document.Node) {
	for _, cn := range children {
		switch kdlNodeName(cn) {
		case "max_file_size":
			if s, ok := kdlFirstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Index.MaxFileSize = sz
				}
			} else if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
		case "max_total_size_mb":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Index.MaxTotalSizeMB = int64(v)
			}
		case "max_file_count":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Index.MaxFileCount = v
			}
		case "follow_symlinks":
			if b, ok := kdlFirstBoolArg(cn); ok {
				cfg.Index.FollowSymlinks = b
			}
		case "respect_gitignore":
			if b, ok := kdlFirstBoolArg(cn); ok {
				cfg.Index.RespectGitignore = b
			}
		case "exclude_tests":
			if b, ok := kdlFirstBoolArg(cn); ok {
				cfg.Index.ExcludeTests = b
			}
		case "watch_mode":
			if b, ok := kdlFirstBoolArg(cn); ok {
				cfg.Index.WatchMode = b
			}
		case "watch_debounce_ms":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Index.WatchDebounceMs = v
			}
		}
	}
}

func parseKDLPerformance(cfg *Config, children []*document.Node) {
	for _, cn := range children {
		switch kdlNodeName(cn) {
		case "max_memory_mb":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Performance.MaxMemoryMB = v
			}
		case "parallel_file_workers":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Performance.ParallelFileWorkers = v
			}
		case "indexing_timeout_sec":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Performance.IndexingTimeoutSec = v
			}
		case "max_tool_count":
			if v, ok := kdlFirstIntArg(cn); ok {
				cfg.Performance.MaxToolCount = v
			}
		}
	}
}

func parseKDLTools(cfg *Config, children []*document.Node) {
	for _, cn := range children {
		switch kdlNodeName(cn) {
		case "preset":
			if s, ok := kdlFirstStringArg(cn); ok {
				cfg.Tools.Preset = Preset(s)
			}
		case "categories":
			for _, gn := range cn.Children {
				if b, ok := kdlFirstBoolArg(gn); ok {
					cfg.Tools.Category[kdlNodeName(gn)] = b
				}
			}
		case "overrides":
			for _, gn := range cn.Children {
				if b, ok := kdlFirstBoolArg(gn); ok {
					cfg.Tools.Overrides[kdlNodeName(gn)] = b
				}
			}
		}
	}
}

func kdlNodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func kdlFirstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func kdlFirstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func kdlFirstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func assignKDLString(n *document.Node, target string, set func(string)) {
	if kdlNodeName(n) == target {
		if s, ok := kdlFirstStringArg(n); ok {
			set(s)
		}
	}
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var multiplier int64 = 1
	var numStr string
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	default:
		numStr = s
	}
	numStr = strings.TrimSpace(numStr)
	var n int64
	if _, err := fmt.Sscanf(numStr, "%d", &n); err != nil {
		return 0, err
	}
	return n * multiplier, nil
}
