package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/display"
	"github.com/codegraph-dev/codegraph/internal/store"
)

var statusCommand = &cli.Command{
	Name:   "status",
	Usage:  "Show the project's last indexing summary",
	Flags:  []cli.Flag{jsonFlag},
	Action: runStatus,
}

func runStatus(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	root := absRoot(cfg.Project.Root)

	st, err := loadRunState(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("read run state: %w", err)
	}

	summary := display.IndexSummary{
		ProjectRoot: root,
		Files:       st.Files,
		Nodes:       st.Nodes,
		Edges:       st.Edges,
		Embeddings:  st.Embeddings,
		ParseErrors: st.ParseErrors,
		Unresolved:  st.Unresolved,
	}

	if _, statErr := os.Stat(dbPath(cfg.Project.Root)); statErr == nil {
		if live, err := refreshFromStore(c.Context, cfg, root); err == nil {
			summary.Nodes = live.Nodes
			summary.Edges = live.Edges
			summary.Unresolved = live.Unresolved
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			display.IndexSummary
			LastIndexedUnix int64 `json:"last_indexed_unix"`
		}{summary, st.LastIndexedUnix})
	}

	if st.LastIndexedUnix == 0 {
		fmt.Fprintln(c.App.Writer, "not indexed yet — run `codegraph index`")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s %s\n", display.Label("Last indexed:"), st.lastIndexed().Format("2006-01-02 15:04:05"))
	display.PrintIndexSummary(summary)
	return nil
}

// refreshFromStore re-derives counts from the open database rather
// than trusting the run-state snapshot, since an interrupted index
// pass can leave the two out of sync.
func refreshFromStore(ctx context.Context, cfg *config.Config, root string) (display.IndexSummary, error) {
	st, err := store.Open(dbPath(cfg.Project.Root))
	if err != nil {
		return display.IndexSummary{}, err
	}
	defer st.Close()

	ids, err := st.AllNodeIDs(ctx)
	if err != nil {
		return display.IndexSummary{}, err
	}
	edges, err := st.AllEdges(ctx, nil)
	if err != nil {
		return display.IndexSummary{}, err
	}
	unresolved, err := st.AllUnresolvedRefs(ctx)
	if err != nil {
		return display.IndexSummary{}, err
	}

	return display.IndexSummary{
		ProjectRoot: root,
		Nodes:       len(ids),
		Edges:       len(edges),
		Unresolved:  len(unresolved),
	}, nil
}
