package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FlagOverrides carries the subset of config fields a CLI flag can set.
// Only non-zero fields are applied, so flags layer cleanly on top of
// whatever the lower layers produced.
type FlagOverrides struct {
	Root    string
	Include []string
	Exclude []string
	Preset  Preset
}

// Load builds the fully merged configuration for a project root,
// highest priority first: flags > environment > project file
// (.codegraph.kdl) > user file (~/.config/codegraph/config.toml) >
// defaults. Each layer is read independently; a missing file at any
// layer is not an error.
func Load(projectRoot string, flags FlagOverrides) (*Config, error) {
	cfg := Default()

	if userCfg, err := loadUserTOML(); err == nil && userCfg != nil {
		mergeInto(cfg, userCfg)
	}

	root := projectRoot
	if root == "" {
		root = "."
	}
	if absRoot, err := filepath.Abs(root); err == nil {
		root = absRoot
	}
	cfg.Project.Root = root

	kdlPath := filepath.Join(root, ".codegraph.kdl")
	if projectCfg, err := loadProjectKDL(kdlPath); err == nil && projectCfg != nil {
		mergeInto(cfg, projectCfg)
	}

	applyEnv(cfg)
	applyFlags(cfg, flags)

	v := NewValidator()
	if err := v.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeInto overlays the non-zero fields of overlay onto base; the
// boolean index settings, whose loaders start from Default(), are
// overlaid when they differ from the default. Only fields the layered
// sources can actually express are considered — Config is treated as a
// value, constructed once, never mutated by reference elsewhere.
func mergeInto(base, overlay *Config) {
	def := Default().Index
	if overlay.Project.Root != "" {
		base.Project.Root = overlay.Project.Root
	}
	if overlay.Project.Name != "" {
		base.Project.Name = overlay.Project.Name
	}
	if overlay.Index.MaxFileSize != 0 {
		base.Index.MaxFileSize = overlay.Index.MaxFileSize
	}
	if overlay.Index.MaxTotalSizeMB != 0 {
		base.Index.MaxTotalSizeMB = overlay.Index.MaxTotalSizeMB
	}
	if overlay.Index.MaxFileCount != 0 {
		base.Index.MaxFileCount = overlay.Index.MaxFileCount
	}
	if overlay.Index.FollowSymlinks != def.FollowSymlinks {
		base.Index.FollowSymlinks = overlay.Index.FollowSymlinks
	}
	if overlay.Index.RespectGitignore != def.RespectGitignore {
		base.Index.RespectGitignore = overlay.Index.RespectGitignore
	}
	if overlay.Index.ExcludeTests != def.ExcludeTests {
		base.Index.ExcludeTests = overlay.Index.ExcludeTests
	}
	if overlay.Index.WatchMode != def.WatchMode {
		base.Index.WatchMode = overlay.Index.WatchMode
	}
	if overlay.Index.WatchDebounceMs != 0 {
		base.Index.WatchDebounceMs = overlay.Index.WatchDebounceMs
	}
	if overlay.Performance.MaxMemoryMB != 0 {
		base.Performance.MaxMemoryMB = overlay.Performance.MaxMemoryMB
	}
	if overlay.Performance.ParallelFileWorkers != 0 {
		base.Performance.ParallelFileWorkers = overlay.Performance.ParallelFileWorkers
	}
	if overlay.Performance.IndexingTimeoutSec != 0 {
		base.Performance.IndexingTimeoutSec = overlay.Performance.IndexingTimeoutSec
	}
	if overlay.Performance.MaxToolCount != 0 {
		base.Performance.MaxToolCount = overlay.Performance.MaxToolCount
	}
	if overlay.Tools.Preset != "" {
		base.Tools.Preset = overlay.Tools.Preset
	}
	for k, v := range overlay.Tools.Category {
		base.Tools.Category[k] = v
	}
	for k, v := range overlay.Tools.Overrides {
		base.Tools.Overrides[k] = v
	}
	if len(overlay.Include) > 0 {
		base.Include = overlay.Include
	}
	if len(overlay.Exclude) > 0 {
		base.Exclude = append(base.Exclude, overlay.Exclude...)
	}
	for k, v := range overlay.Contexts {
		base.Contexts[k] = v
	}
}

// applyEnv applies environment-variable overrides. Recognised:
// CODEGRAPH_PRESET, CODEGRAPH_EXCLUDE (comma-separated, appended),
// CODEGRAPH_DISABLE_TOOLS (comma-separated tool names, disabled),
// CODEGRAPH_MAX_TOOL_COUNT (integer; ignored if not a number).
func applyEnv(cfg *Config) {
	if preset := os.Getenv("CODEGRAPH_PRESET"); preset != "" {
		cfg.Tools.Preset = Preset(preset)
	}
	if exclude := os.Getenv("CODEGRAPH_EXCLUDE"); exclude != "" {
		cfg.Exclude = append(cfg.Exclude, splitCSV(exclude)...)
	}
	if disabled := os.Getenv("CODEGRAPH_DISABLE_TOOLS"); disabled != "" {
		for _, name := range splitCSV(disabled) {
			cfg.Tools.Overrides[name] = false
		}
	}
	if maxTools := os.Getenv("CODEGRAPH_MAX_TOOL_COUNT"); maxTools != "" {
		if n, err := strconv.Atoi(maxTools); err == nil {
			cfg.Performance.MaxToolCount = n
		}
	}
}

func applyFlags(cfg *Config, flags FlagOverrides) {
	if flags.Root != "" {
		if abs, err := filepath.Abs(flags.Root); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = flags.Root
		}
	}
	if len(flags.Include) > 0 {
		cfg.Include = flags.Include
	}
	if len(flags.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, flags.Exclude...)
	}
	if flags.Preset != "" {
		cfg.Tools.Preset = flags.Preset
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
