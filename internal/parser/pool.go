package parser

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
)

// FileSource supplies the raw bytes and test-artifact flag for a
// candidate path, decoupling the pool from the walker package.
type FileSource struct {
	Path   string
	IsTest bool
}

// Pool runs file extraction across a fixed set of worker goroutines
// and delivers results to a single sink. Delivery order across files
// is not guaranteed, but it is serialized: the store's single writer
// connection requires exactly one goroutine touching it at a time.
// Each worker owns one workerState for its whole lifetime, so the
// parser and compiled queries for a language are built once per
// worker and reused across every file that worker handles, rather
// than rebuilt per file.
type Pool struct {
	workers int
}

// NewPool returns a pool sized to workers (at least 1).
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Sink receives one file's extraction result. Implementations are not
// called concurrently.
type Sink func(FileResult) error

// Run feeds files to p.workers persistent goroutines over a bounded
// job channel and delivers results to sink one at a time over a
// buffered channel, sized to workers*4 per the concurrency design. A
// per-file read or parse failure is recorded on the FileResult and
// passed to sink rather than aborting the run; only a sink error or
// context cancellation stops the whole batch.
func (p *Pool) Run(ctx context.Context, files []FileSource, sink Sink) error {
	jobs := make(chan FileSource, p.workers*4)
	results := make(chan FileResult, p.workers*4)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers, workerCtx := errgroup.WithContext(gctx)
	for i := 0; i < p.workers; i++ {
		workers.Go(func() error {
			w := newWorkerState()
			defer w.close()
			for {
				select {
				case f, ok := <-jobs:
					if !ok {
						return nil
					}
					res := extractOne(w, f)
					select {
					case results <- res:
					case <-workerCtx.Done():
						return workerCtx.Err()
					}
				case <-workerCtx.Done():
					return workerCtx.Err()
				}
			}
		})
	}

	g.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	g.Go(func() error {
		for r := range results {
			if err := sink(r); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

func extractOne(w *workerState, f FileSource) FileResult {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return FileResult{Path: f.Path, ParseError: "read: " + err.Error()}
	}
	return w.extractFile(f.Path, content, f.IsTest)
}
