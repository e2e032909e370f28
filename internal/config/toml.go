package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// userTOML mirrors the subset of Config a user-level file can set.
// Kept separate from Config so go-toml's struct tags don't leak into
// the core config type.
type userTOML struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Index struct {
		RespectGitignore *bool `toml:"respect_gitignore"`
		ExcludeTests     *bool `toml:"exclude_tests"`
		WatchMode        *bool `toml:"watch_mode"`
	} `toml:"index"`
	Performance struct {
		MaxMemoryMB         int `toml:"max_memory_mb"`
		ParallelFileWorkers int `toml:"parallel_file_workers"`
	} `toml:"performance"`
	Tools struct {
		Preset    string          `toml:"preset"`
		Category  map[string]bool `toml:"categories"`
		Overrides map[string]bool `toml:"overrides"`
	} `toml:"tools"`
	Exclude []string `toml:"exclude"`
}

// userConfigPath returns ~/.config/codegraph/config.toml, honoring
// XDG_CONFIG_HOME when set.
func userConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "codegraph", "config.toml"), nil
}

// loadUserTOML reads the per-user config file. A missing file is not
// an error: it returns (nil, nil).
func loadUserTOML() (*Config, error) {
	path, err := userConfigPath()
	if err != nil {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw userTOML
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	def := Default()
	cfg := &Config{
		Project:  Project{Name: raw.Project.Name},
		Index:    def.Index,
		Tools:    Tools{Preset: Preset(raw.Tools.Preset), Category: raw.Tools.Category, Overrides: raw.Tools.Overrides},
		Exclude:  raw.Exclude,
		Contexts: map[string]string{},
		Performance: Performance{
			MaxMemoryMB:         raw.Performance.MaxMemoryMB,
			ParallelFileWorkers: raw.Performance.ParallelFileWorkers,
		},
	}
	if raw.Index.RespectGitignore != nil {
		cfg.Index.RespectGitignore = *raw.Index.RespectGitignore
	}
	if raw.Index.ExcludeTests != nil {
		cfg.Index.ExcludeTests = *raw.Index.ExcludeTests
	}
	if raw.Index.WatchMode != nil {
		cfg.Index.WatchMode = *raw.Index.WatchMode
	}
	if cfg.Tools.Category == nil {
		cfg.Tools.Category = map[string]bool{}
	}
	if cfg.Tools.Overrides == nil {
		cfg.Tools.Overrides = map[string]bool{}
	}
	return cfg, nil
}
