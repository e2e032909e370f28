package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/display"
	"github.com/codegraph-dev/codegraph/internal/mcp"
	"github.com/codegraph-dev/codegraph/internal/store"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the MCP tool-call server over stdio, with a Prometheus /metrics listener",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "metrics-addr", Value: ":9090", Usage: "Address to serve /metrics on (empty disables it)"},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	eng, err := openEngines(c.Context, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	server := mcp.NewServer(cfg, eng.search, eng.graph, eng.assemble, eng.store, log.New(os.Stderr, "", log.LstdFlags))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	if addr := c.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		httpServer := &http.Server{Addr: addr, Handler: mux}
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("serving metrics", zap.String("addr", addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer httpServer.Close()
	}

	if cfg.Index.WatchMode {
		watcher, err := startWatcher(ctx, cfg, logger, &wg)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case err := <-errChan:
		cancel()
		wg.Wait()
		return err
	case <-sigChan:
		logger.Info("shutting down")
		cancel()
		wg.Wait()
		return nil
	}
}

// startWatcher drives incremental re-indexing from filesystem change
// notifications, debounced per Index.WatchDebounceMs so a burst of
// saves (an editor autosave loop, a git checkout) triggers one re-index
// rather than one per file.
func startWatcher(ctx context.Context, cfg *config.Config, logger *zap.Logger, wg *sync.WaitGroup) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatchDirs(watcher, cfg.Project.Root); err != nil {
		watcher.Close()
		return nil, err
	}

	debounce := time.Duration(cfg.Index.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var timer *time.Timer
		pending := false
		reindex := func() {
			pending = false
			st, err := store.Open(dbPath(cfg.Project.Root))
			if err != nil {
				logger.Error("watch: open store", zap.Error(err))
				return
			}
			summary, err := runIndexPass(ctx, st, cfg, false)
			st.Close()
			if err != nil {
				logger.Error("watch: reindex", zap.Error(err))
				return
			}
			display.PrintIndexSummary(summary)
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					_ = watcher.Add(event.Name)
				}
				if !pending {
					pending = true
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounce, reindex)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", zap.Error(err))
			}
		}
	}()

	return watcher, nil
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == ".git" || base == ".codegraph" || base == "node_modules" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
