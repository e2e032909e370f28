package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codegraph-dev/codegraph/internal/display"
	"github.com/codegraph-dev/codegraph/internal/retrieval"
)

var searchCommand = &cli.Command{
	Name:      "search",
	Aliases:   []string{"s"},
	Usage:     "Search the code graph by keyword (fast) or keyword+semantic (hybrid)",
	ArgsUsage: "<query>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Maximum results"},
		&cli.BoolFlag{Name: "hybrid", Usage: "Fuse keyword and semantic search (slower, higher recall)"},
		&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
	},
	Action: runSearch,
}

func runSearch(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("search requires a query argument", 1)
	}
	query := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	limit := c.Int("limit")
	var results []retrieval.Result
	if c.Bool("hybrid") {
		results, err = eng.search.Hybrid(c.Context, query, retrieval.HybridOptions{KeywordLimit: limit})
	} else {
		results, err = eng.search.Search(c.Context, query, limit)
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "%s  %s  %s:%d\n",
			display.Label(string(r.Origin)), r.Node.QualifiedName, display.DimText(r.Node.Path), r.Node.Pos.StartLine)
	}
	return nil
}

var contextCommand = &cli.Command{
	Name:      "context",
	Usage:     "Assemble a token-budgeted context window for a query",
	ArgsUsage: "<query>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "budget", Value: 4000, Usage: "Total token budget"},
		&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
	},
	Action: runContext,
}

func runContext(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("context requires a query argument", 1)
	}
	query := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	candidates, err := eng.search.Hybrid(c.Context, query, retrieval.HybridOptions{})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	assembled, err := eng.assemble.Assemble(c.Context, query, candidates, c.Int("budget"))
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(assembled)
	}

	for _, item := range assembled.Items {
		fmt.Fprintf(c.App.Writer, "--- %s [%s] %s:%s\n", item.Tier, display.CountText(item.Tokens), display.DimText(item.Path), item.Name)
		fmt.Fprintln(c.App.Writer, item.Text)
	}
	fmt.Fprintf(c.App.Writer, "\n%s %s/%d\n", display.Label("Budget used:"), display.CountText(assembled.Used), assembled.Budget)
	return nil
}
