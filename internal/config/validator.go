package config

import (
	"fmt"
	"runtime"
)

// Validator validates a merged Config and fills in any defaults that
// depend on the runtime environment (CPU count and the like).
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// ValidateAndSetDefaults validates cfg in place and applies
// environment-dependent defaults. Returns an error for anything the
// layered sources could produce that is not a usable configuration.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return fmt.Errorf("config: project.root must not be empty")
	}
	if cfg.Index.MaxFileSize <= 0 {
		return fmt.Errorf("config: index.max_file_size must be positive")
	}
	if cfg.Index.MaxFileCount <= 0 {
		return fmt.Errorf("config: index.max_file_count must be positive")
	}
	if cfg.Performance.ParallelFileWorkers == 0 {
		cfg.Performance.ParallelFileWorkers = runtime.NumCPU()
	}
	if cfg.Performance.ParallelFileWorkers < 0 {
		return fmt.Errorf("config: performance.parallel_file_workers must not be negative")
	}
	if cfg.Performance.IndexingTimeoutSec <= 0 {
		cfg.Performance.IndexingTimeoutSec = 120
	}
	switch cfg.Tools.Preset {
	case PresetMinimal, PresetBalanced, PresetFull, PresetSecurityFocused:
	case "":
		cfg.Tools.Preset = PresetBalanced
	default:
		return fmt.Errorf("config: unknown tools.preset %q", cfg.Tools.Preset)
	}
	return nil
}
