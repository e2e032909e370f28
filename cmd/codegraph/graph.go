package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/codegraph-dev/codegraph/internal/cgerrors"
	"github.com/codegraph-dev/codegraph/internal/display"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// resolveSymbolCLI looks up a qualified (or bare) name against the
// open store; the first match wins, same policy as internal/mcp's
// resolveSymbol, since qualified names are expected unique in
// practice even though the store does not enforce it.
func resolveSymbolCLI(ctx context.Context, st *store.Store, name string) (types.NodeID, error) {
	nodes, err := st.NodesByQualifiedName(ctx, name)
	if err != nil {
		return 0, cgerrors.StoreErrorf("resolve_symbol", err)
	}
	if len(nodes) == 0 {
		return 0, cgerrors.NotFoundf("resolve_symbol", name, "no symbol named %q", name)
	}
	return nodes[0].ID, nil
}

var depthFlag = &cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Value: 3, Usage: "Maximum traversal depth"}
var jsonFlag = &cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"}

var callersCommand = &cli.Command{
	Name:      "callers",
	Usage:     "List (or tree-render) everything that calls a symbol",
	ArgsUsage: "<qualified-name>",
	Flags:     []cli.Flag{depthFlag, jsonFlag},
	Action:    func(c *cli.Context) error { return runTree(c, true) },
}

var calleesCommand = &cli.Command{
	Name:      "callees",
	Usage:     "List (or tree-render) everything a symbol calls",
	ArgsUsage: "<qualified-name>",
	Flags:     []cli.Flag{depthFlag, jsonFlag},
	Action:    func(c *cli.Context) error { return runTree(c, false) },
}

func runTree(c *cli.Context, callers bool) error {
	if c.NArg() == 0 {
		return cli.Exit("requires a symbol argument", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	id, err := resolveSymbolCLI(c.Context, eng.store, c.Args().First())
	if err != nil {
		return err
	}

	walk := eng.graph.Callees
	if callers {
		walk = eng.graph.Callers
	}
	tree, err := display.BuildTree(c.Context, walk, eng.store, id, c.Int("depth"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return encodeJSON(c, tree)
	}
	fmt.Fprint(c.App.Writer, display.FormatTree(tree))
	return nil
}

var dependenciesCommand = &cli.Command{
	Name:      "dependencies",
	Usage:     "List everything a symbol transitively depends on (imports+calls)",
	ArgsUsage: "<qualified-name>",
	Flags:     []cli.Flag{depthFlag, jsonFlag},
	Action:    runDependencies,
}

func runDependencies(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("requires a symbol argument", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	id, err := resolveSymbolCLI(c.Context, eng.store, c.Args().First())
	if err != nil {
		return err
	}
	hops, err := eng.graph.Dependencies(c.Context, id, c.Int("depth"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return encodeJSON(c, hops)
	}
	for _, h := range hops {
		node, err := eng.store.GetNode(c.Context, h.Node)
		if err != nil || node == nil {
			continue
		}
		fmt.Fprintf(c.App.Writer, "%2d  %s  %s\n", h.Depth, node.QualifiedName, display.DimText(node.Path))
	}
	return nil
}

var impactCommand = &cli.Command{
	Name:      "impact",
	Usage:     "Blast-radius of changing a symbol",
	ArgsUsage: "<qualified-name>",
	Flags:     []cli.Flag{jsonFlag},
	Action:    runImpact,
}

func runImpact(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("requires a symbol argument", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	id, err := resolveSymbolCLI(c.Context, eng.store, c.Args().First())
	if err != nil {
		return err
	}
	impact, err := eng.graph.Impact(c.Context, id, cfg.Analysis.ImpactHighThreshold, cfg.Analysis.ImpactMediumThreshold)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return encodeJSON(c, impact)
	}
	fmt.Fprintf(c.App.Writer, "%s %s\n  direct: %d  transitive: %d  affected files: %d\n",
		display.Label("Impact level:"), impact.Level, impact.Direct, impact.Transitive, impact.AffectedFiles)
	return nil
}

var circularImportsCommand = &cli.Command{
	Name:   "circular-imports",
	Usage:  "List import cycles (strongly connected components, size >= 2)",
	Flags:  []cli.Flag{jsonFlag},
	Action: runCircularImports,
}

func runCircularImports(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	sccs, err := eng.graph.CircularImports(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return encodeJSON(c, sccs)
	}
	if len(sccs) == 0 {
		fmt.Fprintln(c.App.Writer, "no import cycles found")
		return nil
	}
	for i, scc := range sccs {
		fmt.Fprintf(c.App.Writer, "cycle %d: %v\n", i+1, scc.Nodes)
	}
	return nil
}

var pageRankCommand = &cli.Command{
	Name:   "pagerank",
	Usage:  "Rank symbols by PageRank over the calls+imports graph",
	Flags:  []cli.Flag{&cli.IntFlag{Name: "limit", Value: 20}, jsonFlag},
	Action: runPageRank,
}

func runPageRank(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ranks, err := eng.graph.PageRank(c.Context)
	if err != nil {
		return err
	}

	type ranked struct {
		Node types.NodeID `json:"node"`
		Rank float64      `json:"rank"`
	}
	out := make([]ranked, 0, len(ranks))
	for id, r := range ranks {
		out = append(out, ranked{Node: id, Rank: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Node < out[j].Node
	})
	limit := c.Int("limit")
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	if c.Bool("json") {
		return encodeJSON(c, out)
	}
	for _, r := range out {
		node, err := eng.store.GetNode(c.Context, r.Node)
		if err != nil || node == nil {
			continue
		}
		fmt.Fprintf(c.App.Writer, "%.6f  %s\n", r.Rank, node.QualifiedName)
	}
	return nil
}

var deadCodeCommand = &cli.Command{
	Name:   "dead-code",
	Usage:  "List functions/methods/classes with no inbound calls, references, or tests",
	Flags:  []cli.Flag{jsonFlag},
	Action: runDeadCode,
}

func runDeadCode(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	dead, err := eng.graph.DeadCode(c.Context, cfg.Analysis.EntryPoints)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return encodeJSON(c, dead)
	}
	for _, id := range dead {
		node, err := eng.store.GetNode(c.Context, id)
		if err != nil || node == nil {
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s  %s\n", node.QualifiedName, display.DimText(node.Path))
	}
	return nil
}

func encodeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
