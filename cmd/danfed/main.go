package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/async"
	"github.com/joseph-ayodele/danfe-extractor/internal/export"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
	"github.com/joseph-ayodele/danfe-extractor/internal/ingest"
	repo "github.com/joseph-ayodele/danfe-extractor/internal/repository"
)

func main() {
	cfg := common.LoadConfig()

	var (
		roots    = flag.String("roots", cfg.Batch.InputDir, "comma-separated directories to watch")
		initial  = flag.Bool("initial-scan", true, "process PDFs already present at startup")
		debounce = flag.Duration("debounce", 750*time.Millisecond, "quiet period before a changed file is processed")
		workers  = flag.Int("workers", cfg.Batch.Workers, "documents processed in parallel")
	)
	flag.Parse()
	cfg.Batch.Workers = *workers

	logger := common.NewLogger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if err := cfg.RequireDatabase(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := heuristics.Default()
	if cfg.Batch.HeuristicsFile != "" {
		var err error
		if h, err = heuristics.Load(cfg.Batch.HeuristicsFile); err != nil {
			logger.Error("failed to load heuristics", "path", cfg.Batch.HeuristicsFile, "error", err)
			os.Exit(1)
		}
	}

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)
	if err := repo.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	store := repo.NewResultRepository(db, logger)

	scanner, engine, err := core.NewScanner(cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to set up ocr", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to close ocr engine", "error", err)
		}
	}()
	processor := core.NewProcessor(logger, scanner,
		export.NewDumpWriter(cfg.Batch.DumpDir, logger),
		core.OptionsFromConfig(cfg.OCR, h))

	runID, err := store.StartRun(ctx, *roots)
	if err != nil {
		logger.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	ctx = common.WithRunID(ctx, runID.String())

	var (
		processed atomic.Int64
		inflight  sync.Map // content hash -> struct{}
	)
	handle := func(ctx context.Context, job async.Job) error {
		defer inflight.Delete(job.ContentHash)
		doc := processor.Process(ctx, job.Path)
		doc.ContentHash = job.ContentHash
		if err := ctx.Err(); err != nil {
			// unsaved documents are picked up again by the next initial scan
			return fmt.Errorf("%s not saved: %w", doc.File, err)
		}
		if _, err := store.SaveDocument(context.WithoutCancel(ctx), runID, doc); err != nil {
			return fmt.Errorf("save %s: %w", doc.File, err)
		}
		processed.Add(1)
		return nil
	}
	queue := async.NewProcessorQueue(handle, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithProcessTimeout(cfg.Batch.DocTimeout),
		async.WithBaseContext(ctx),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       splitRoots(*roots),
		InitialScan: *initial,
		Debounce:    *debounce,
		SkipHidden:  true,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("daemon started", "run_id", runID, "roots", *roots, "workers", cfg.Batch.Workers)

	index := 0
loop:
	for {
		select {
		case path, ok := <-events:
			if !ok {
				break loop
			}
			hash, err := ingest.HashFile(path)
			if err != nil {
				// the file may still be mid-copy; the next write event retries it
				logger.Warn("failed to hash document", "path", path, "error", err)
				continue
			}
			if _, busy := inflight.LoadOrStore(hash, struct{}{}); busy {
				continue
			}
			seen, err := store.HasContentHash(ctx, hash)
			if err != nil {
				logger.Error("failed to look up content hash", "path", path, "error", err)
				inflight.Delete(hash)
				continue
			}
			if seen {
				logger.Debug("document already processed", "path", path, "content_hash", hash)
				inflight.Delete(hash)
				continue
			}
			if err := queue.Enqueue(ctx, async.Job{Index: index, Path: path, ContentHash: hash}); err != nil {
				inflight.Delete(hash)
				logger.Warn("failed to enqueue document", "path", path, "error", err)
				continue
			}
			index++
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher reported error", "error", err)
		case <-ctx.Done():
			break loop
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	if err := store.FinishRun(shutdownCtx, runID, int(processed.Load())); err != nil {
		logger.Error("failed to finish run", "run_id", runID, "error", err)
	}
	logger.Info("daemon stopped", "run_id", runID, "documents", processed.Load())
}

func splitRoots(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
