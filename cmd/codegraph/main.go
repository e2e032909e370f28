// Command codegraph is the CLI front-end: a thin adapter that wires
// the core engines (store, walker, parser, resolver, retrieval, graph,
// context) to subcommands and to the MCP tool-call server. No business
// logic lives here beyond argument parsing and wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/codegraph-dev/codegraph/internal/config"
	cgcontext "github.com/codegraph-dev/codegraph/internal/context"
	"github.com/codegraph-dev/codegraph/internal/embedder"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/vectorindex"
)

var version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the CLI's command tree. Split out from main so tests
// can drive it in-process via app.Run(args) without a built binary.
func newApp() *cli.App {
	return &cli.App{
		Name:                   "codegraph",
		Usage:                  "Local code-intelligence engine: semantic graph, search, and context assembly",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Project root to index/query (default: current directory)"},
			&cli.StringSliceFlag{Name: "include", Usage: "Include only files matching glob pattern (repeatable)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Exclude files matching glob pattern (repeatable)"},
			&cli.StringFlag{Name: "preset", Usage: "Tool preset: minimal, balanced, full, security-focused"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose diagnostic logging"},
		},
		Commands: []*cli.Command{
			indexCommand,
			searchCommand,
			contextCommand,
			serveCommand,
			statusCommand,
			callersCommand,
			calleesCommand,
			dependenciesCommand,
			impactCommand,
			circularImportsCommand,
			pageRankCommand,
			deadCodeCommand,
		},
	}
}

// loadConfig merges layered configuration for the invocation, applying
// the global --root/--include/--exclude/--preset flags as the
// highest-priority layer.
func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root, config.FlagOverrides{
		Root:    root,
		Include: c.StringSlice("include"),
		Exclude: c.StringSlice("exclude"),
		Preset:  config.Preset(c.String("preset")),
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI's own diagnostic logger, independent of
// the stdlib *log.Logger the MCP server uses: verbose mode gets a
// real structured backend instead of stdlib log's plain lines.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// engines bundles every query-time collaborator built on an open
// Store, so commands that only need a subset can still construct the
// whole bundle without repeating the wiring. embed is the plain,
// uncached embedder used for query-time text (queries have no content
// fingerprint to key a cache on); cache is a fingerprint-keyed
// decorator over embed. The index pass does not use it: embedNodes
// builds its own Cache.
type engines struct {
	store    *store.Store
	search   *retrieval.Engine
	graph    *graph.Engine
	assemble *cgcontext.Assembler
	vectors  *vectorindex.Index
	embed    embedder.Embedder
	cache    *embedder.Cache
}

// openEngines opens the project's database and wires every engine on
// top of it. Callers must Close() the returned bundle's store.
func openEngines(ctx context.Context, cfg *config.Config) (*engines, error) {
	st, err := store.Open(dbPath(cfg.Project.Root))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hashEmbed := embedder.NewHashingEmbedder(256)
	cache := embedder.NewCache(hashEmbed, st)

	vecIdx := vectorindex.New()
	if err := vecIdx.Refresh(ctx, st); err != nil {
		st.Close()
		return nil, fmt.Errorf("load vector index: %w", err)
	}

	g := graph.New(st)
	pr, err := g.PageRank(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("compute pagerank: %w", err)
	}

	search := retrieval.New(st, vecIdx, st, hashEmbed, retrieval.WithPageRank(pr))
	source := cgcontext.NewFileSourceReader(cfg.Project.Root)
	dirs := &cgcontext.WalkerDirectoryLister{Root: cfg.Project.Root, Include: cfg.Include, Exclude: cfg.Exclude}
	assemble := cgcontext.New(st, g, source, dirs)

	return &engines{store: st, search: search, graph: g, assemble: assemble, vectors: vecIdx, embed: hashEmbed, cache: cache}, nil
}

func (e *engines) Close() error {
	return e.store.Close()
}

func absRoot(root string) string {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}
