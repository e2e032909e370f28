package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/display"
	"github.com/codegraph-dev/codegraph/internal/embedder"
	"github.com/codegraph-dev/codegraph/internal/hasher"
	"github.com/codegraph-dev/codegraph/internal/metrics"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/resolver"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/codegraph-dev/codegraph/internal/walker"
)

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "Build or incrementally update the project's code graph",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress progress bars"},
	},
	Action: runIndex,
}

func runIndex(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath(cfg.Project.Root))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	start := time.Now()
	summary, err := runIndexPass(c.Context, st, cfg, !c.Bool("quiet"))
	metrics.ObserveIndexDuration(start)
	if err != nil {
		return err
	}

	if err := saveRunState(cfg.Project.Root, runState{
		LastIndexedUnix: time.Now().Unix(),
		Files:           summary.Files,
		Nodes:           summary.Nodes,
		Edges:           summary.Edges,
		Embeddings:      summary.Embeddings,
		ParseErrors:     summary.ParseErrors,
		Unresolved:      summary.Unresolved,
	}); err != nil {
		return fmt.Errorf("write run state: %w", err)
	}

	display.PrintIndexSummary(summary)
	return nil
}

// perFileResult carries what one file's pass-A write produced, kept
// around so pass B can resolve its call sites against stable node ids
// without re-parsing.
type perFileResult struct {
	fileID    types.FileID
	nodeIDs   []types.NodeID
	nodes     []types.Node
	callSites []parser.CallSite
	path      string
}

// runIndexPass walks the project, hash-gates each candidate against
// its last stored content hash, extracts and writes the changed ones
// (pass A: nodes only, so ids are stable), resolves every changed
// file's call sites against the now-committed node ids (pass B), and
// retries previously unresolved refs belonging to files that changed.
func runIndexPass(ctx context.Context, st *store.Store, cfg *config.Config, showProgress bool) (display.IndexSummary, error) {
	candidates, err := walker.Walk(walker.Options{
		Root:             cfg.Project.Root,
		Include:          cfg.Include,
		Exclude:          cfg.Exclude,
		RespectGitignore: cfg.Index.RespectGitignore,
		ExcludeTests:     cfg.Index.ExcludeTests,
		FollowSymlinks:   cfg.Index.FollowSymlinks,
		MaxFileSize:      cfg.Index.MaxFileSize,
	})
	if err != nil {
		return display.IndexSummary{}, fmt.Errorf("walk: %w", err)
	}

	var progress *display.PhaseProgress
	if showProgress {
		progress = display.NewPhaseProgress()
	}

	var toParse []parser.FileSource
	unchangedFiles := 0
	for i, cand := range candidates {
		if progress != nil {
			progress.Report(int64(i+1), int64(len(candidates)), "walk")
		}
		existing, err := st.GetFileByPath(ctx, cand.Path)
		if err == nil && existing != nil {
			current, herr := hasher.HashFile(cand.Path)
			if herr == nil && hasher.Gate(existing.ContentHash, current) == types.Unchanged {
				unchangedFiles++
				metrics.FilesIndexed.WithLabelValues("unchanged").Inc()
				continue
			}
		}
		toParse = append(toParse, parser.FileSource{Path: cand.Path, IsTest: cand.IsTestPath})
	}

	workers := cfg.Performance.ParallelFileWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := parser.NewPool(workers)

	var perFile []perFileResult
	parseErrors := 0
	processed := 0
	sink := func(res parser.FileResult) error {
		processed++
		if progress != nil {
			progress.Report(int64(processed), int64(len(toParse)), "parse")
		}
		if res.ParseError != "" {
			parseErrors++
			metrics.ParseErrors.Inc()
		}

		fileID, nodeIDs, err := st.WriteFileBatch(ctx, store.FileBatch{
			File: types.FileRecord{
				Path:        res.Path,
				ContentHash: res.ContentHash,
				Language:    res.Language,
				SymbolCount: len(res.Nodes),
				ParseError:  res.ParseError,
			},
			Nodes: res.Nodes,
		})
		if err != nil {
			return fmt.Errorf("write nodes for %s: %w", res.Path, err)
		}
		metrics.FilesIndexed.WithLabelValues("changed").Inc()

		perFile = append(perFile, perFileResult{
			fileID: fileID, nodeIDs: nodeIDs, nodes: res.Nodes, callSites: res.CallSites, path: res.Path,
		})
		return nil
	}

	if err := pool.Run(ctx, toParse, sink); err != nil {
		return display.IndexSummary{}, fmt.Errorf("extract: %w", err)
	}

	res := resolver.New()
	var changedFileIDs []types.FileID
	for i, f := range perFile {
		if progress != nil {
			progress.Report(int64(i+1), int64(len(perFile)), "resolve")
		}
		bindings := res.ResolveFile(ctx, st, f.path, f.nodes, f.nodeIDs, f.callSites)

		var edges []types.Edge
		var unresolved []types.UnresolvedRef
		for _, b := range bindings {
			if b.Resolved {
				edges = append(edges, b.Edge)
			} else {
				unresolved = append(unresolved, b.Ref)
			}
		}
		if err := st.WriteEdges(ctx, edges, unresolved); err != nil {
			return display.IndexSummary{}, fmt.Errorf("write edges for %s: %w", f.path, err)
		}
		changedFileIDs = append(changedFileIDs, f.fileID)
	}

	// Now that every changed file's nodes are stored, retry the changed
	// files' own unresolved refs. Refs held by unchanged files are not
	// retried here.
	if _, err := res.Retry(ctx, st, changedFileIDs); err != nil {
		return display.IndexSummary{}, fmt.Errorf("retry unresolved: %w", err)
	}

	embeddings, err := embedNodes(ctx, st, perFile, progress)
	if err != nil {
		return display.IndexSummary{}, fmt.Errorf("embed: %w", err)
	}

	if progress != nil {
		progress.Finish()
	}

	allIDs, err := st.AllNodeIDs(ctx)
	if err != nil {
		return display.IndexSummary{}, err
	}
	allEdges, err := st.AllEdges(ctx, nil)
	if err != nil {
		return display.IndexSummary{}, err
	}
	unresolvedRefs, err := st.AllUnresolvedRefs(ctx)
	if err != nil {
		return display.IndexSummary{}, err
	}

	return display.IndexSummary{
		ProjectRoot: cfg.Project.Root,
		Files:       unchangedFiles + len(perFile),
		Nodes:       len(allIDs),
		Edges:       len(allEdges),
		Embeddings:  embeddings,
		ParseErrors: parseErrors,
		Unresolved:  len(unresolvedRefs),
	}, nil
}

// embedNodes computes and caches an embedding for every changed node's
// signature text, so semantic search has a vector to rank against as
// soon as the pass completes.
func embedNodes(ctx context.Context, st *store.Store, perFile []perFileResult, progress *display.PhaseProgress) (int, error) {
	cache := embedder.NewCache(embedder.NewHashingEmbedder(256), st)
	count := 0
	total := 0
	for _, f := range perFile {
		total += len(f.nodes)
	}
	for _, f := range perFile {
		for i, n := range f.nodes {
			text := n.Signature
			if text == "" {
				text = n.Name
			}
			fp := hasher.HashBytes([]byte(text))
			vec, err := cache.Embed(ctx, fp, text)
			if err != nil {
				return count, err
			}
			if err := st.LinkNodeVector(ctx, f.nodeIDs[i], fp); err != nil {
				return count, err
			}
			count++
			if progress != nil {
				progress.Report(int64(count), int64(total), "embed")
			}
		}
	}
	return count, nil
}
