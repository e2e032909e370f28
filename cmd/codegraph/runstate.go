package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// runState is the small on-disk summary `status` reads without opening
// the database — per SPEC_FULL.md's on-disk layout, a relational
// database file plus a small run-state file, portable across
// identical engine versions.
type runState struct {
	LastIndexedUnix int64 `json:"last_indexed_unix"`
	Files           int   `json:"files"`
	Nodes           int   `json:"nodes"`
	Edges           int   `json:"edges"`
	Embeddings      int   `json:"embeddings"`
	ParseErrors     int   `json:"parse_errors"`
	Unresolved      int   `json:"unresolved"`
}

func codegraphDir(root string) string {
	return filepath.Join(root, ".codegraph")
}

func dbPath(root string) string {
	return filepath.Join(codegraphDir(root), "graph.db")
}

func runStatePath(root string) string {
	return filepath.Join(codegraphDir(root), "run-state.json")
}

// saveRunState writes s to root's run-state file, creating .codegraph/
// if needed.
func saveRunState(root string, s runState) error {
	if err := os.MkdirAll(codegraphDir(root), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(runStatePath(root), data, 0o644)
}

// loadRunState reads root's run-state file. A missing file returns
// the zero value, not an error: a project that has never been indexed
// is a valid state for `status` to report, not a failure.
func loadRunState(root string) (runState, error) {
	data, err := os.ReadFile(runStatePath(root))
	if os.IsNotExist(err) {
		return runState{}, nil
	}
	if err != nil {
		return runState{}, err
	}
	var s runState
	if err := json.Unmarshal(data, &s); err != nil {
		return runState{}, err
	}
	return s, nil
}

func (s runState) lastIndexed() time.Time {
	if s.LastIndexedUnix == 0 {
		return time.Time{}
	}
	return time.Unix(s.LastIndexedUnix, 0)
}
