// Package config loads and merges codegraph configuration from layered
// sources: explicit flags, environment variables, a per-project KDL
// file, a per-user TOML file, and built-in defaults, highest priority
// first.
package config

// Preset selects which tool categories are exposed by default.
type Preset string

const (
	PresetMinimal         Preset = "minimal"
	PresetBalanced        Preset = "balanced"
	PresetFull            Preset = "full"
	PresetSecurityFocused Preset = "security-focused"
)

// Config is the fully merged, immutable configuration value passed
// explicitly through the program instead of read from global state.
type Config struct {
	Project     Project
	Index       Index
	Performance Performance
	Tools       Tools
	Analysis    Analysis
	Include     []string
	Exclude     []string
	Contexts    map[string]string
}

// Analysis configures the graph-derived analyses (impact, dead-code)
// that depend on project-specific thresholds rather than spec constants.
type Analysis struct {
	ImpactHighThreshold   int      // transitive reverse-closure size at or above which impact is "high"
	ImpactMediumThreshold int      // and above which impact is "medium"; below is "low"
	EntryPoints           []string // qualified names exempt from dead-code (e.g. "main.main")
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxTotalSizeMB   int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	ExcludeTests     bool
	WatchMode        bool
	WatchDebounceMs  int
}

type Performance struct {
	MaxMemoryMB         int
	ParallelFileWorkers int // 0 = auto-detect (NumCPU)
	IndexingTimeoutSec  int
	MaxToolCount        int
}

// Tools mirrors the tool registry's enable/disable surface from the
// external interfaces contract: a preset plus per-category and
// per-tool overrides.
type Tools struct {
	Preset    Preset
	Category  map[string]bool // category name -> enabled
	Overrides map[string]bool // tool name -> enabled
}

// Default returns the built-in defaults, the lowest-priority layer.
func Default() *Config {
	return &Config{
		Project: Project{Root: ".", Name: ""},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxTotalSizeMB:   500,
			MaxFileCount:     20000,
			FollowSymlinks:   true,
			RespectGitignore: true,
			ExcludeTests:     false,
			WatchMode:        false,
			WatchDebounceMs:  300,
		},
		Performance: Performance{
			MaxMemoryMB:         512,
			ParallelFileWorkers: 0,
			IndexingTimeoutSec:  120,
			MaxToolCount:        0, // 0 = unbounded
		},
		Tools: Tools{
			Preset:    PresetBalanced,
			Category:  map[string]bool{},
			Overrides: map[string]bool{},
		},
		Analysis: Analysis{
			ImpactHighThreshold:   50,
			ImpactMediumThreshold: 10,
			EntryPoints:           []string{"main.main", "init"},
		},
		Include:  nil,
		Exclude:  nil,
		Contexts: map[string]string{},
	}
}

// clone returns a deep-enough copy so callers can layer overrides
// without mutating a shared default.
func (c *Config) clone() *Config {
	cp := *c
	cp.Tools.Category = copyBoolMap(c.Tools.Category)
	cp.Tools.Overrides = copyBoolMap(c.Tools.Overrides)
	cp.Contexts = make(map[string]string, len(c.Contexts))
	for k, v := range c.Contexts {
		cp.Contexts[k] = v
	}
	cp.Include = append([]string(nil), c.Include...)
	cp.Exclude = append([]string(nil), c.Exclude...)
	return &cp
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
