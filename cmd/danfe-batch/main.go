package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/async"
	"github.com/joseph-ayodele/danfe-extractor/internal/export"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
	"github.com/joseph-ayodele/danfe-extractor/internal/ingest"
	repo "github.com/joseph-ayodele/danfe-extractor/internal/repository"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg := common.LoadConfig()

	// Flags override the environment
	var (
		dir     = flag.String("dir", cfg.Batch.InputDir, "directory with DANFE PDFs")
		out     = flag.String("out", cfg.Batch.OutputDir, "directory for the JSON result files")
		dumps   = flag.String("dumps", cfg.Batch.DumpDir, "directory for OCR dumps of unresolved documents")
		xlsx    = flag.String("xlsx", cfg.Batch.XLSXPath, "optional XLSX workbook path")
		workers = flag.Int("workers", cfg.Batch.Workers, "documents processed in parallel")
		timeout = flag.Duration("timeout", cfg.Batch.DocTimeout, "per-document time limit (0 = none)")
		persist = flag.Bool("store", false, "also save results to the SQL store (DB_DRIVER, DB_URL)")
	)
	flag.Parse()
	cfg.Batch.InputDir = *dir
	cfg.Batch.OutputDir = *out
	cfg.Batch.DumpDir = *dumps
	cfg.Batch.XLSXPath = *xlsx
	cfg.Batch.Workers = *workers
	cfg.Batch.DocTimeout = *timeout

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := heuristics.Default()
	if cfg.Batch.HeuristicsFile != "" {
		var err error
		if h, err = heuristics.Load(cfg.Batch.HeuristicsFile); err != nil {
			logger.Error("failed to load heuristics", "path", cfg.Batch.HeuristicsFile, "error", err)
			os.Exit(1)
		}
		logger.Info("heuristics loaded", "path", cfg.Batch.HeuristicsFile, "natureza_terms", len(h.NaturezaTerms()))
	}

	files, err := ingest.ListDocuments(cfg.Batch.InputDir, true)
	if err != nil {
		logger.Error("failed to list documents", "dir", cfg.Batch.InputDir, "error", err)
		os.Exit(1)
	}
	logger.Info("documents found", "dir", cfg.Batch.InputDir, "count", len(files))

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

	var (
		store repo.ResultRepository
		runID uuid.UUID
	)
	if *persist {
		if err := cfg.RequireDatabase(); err != nil {
			logger.Error("store requested without database", "error", err)
			os.Exit(1)
		}
		db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close(logger)
		if err := repo.Migrate(ctx, db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		store = repo.NewResultRepository(db, logger)
		if runID, err = store.StartRun(ctx, cfg.Batch.InputDir); err != nil {
			logger.Error("failed to start run", "error", err)
			os.Exit(1)
		}
		ctx = common.WithRunID(ctx, runID.String())
		logger.Info("run started", "run_id", runID)
	}

	agg := results.NewAggregator(len(files))
	handle := func(ctx context.Context, job async.Job) error {
		doc := processor.Process(ctx, job.Path)
		doc.ContentHash = job.ContentHash
		agg.Put(job.Index, doc)
		if store == nil {
			return nil
		}
		// a cancelled document is still recorded
		if _, err := store.SaveDocument(context.WithoutCancel(ctx), runID, doc); err != nil {
			return fmt.Errorf("save %s: %w", doc.File, err)
		}
		return nil
	}

	queue := async.NewProcessorQueue(handle, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(len(files)),
		async.WithProcessTimeout(cfg.Batch.DocTimeout),
		async.WithBaseContext(ctx),
	)

	start := time.Now()
	for i, path := range files {
		hash, err := ingest.HashFile(path)
		if err != nil {
			logger.Warn("failed to hash document", "path", path, "error", err)
		}
		if err := queue.Enqueue(ctx, async.Job{Index: i, Path: path, ContentHash: hash}); err != nil {
			logger.Warn("stopped enqueueing", "path", path, "error", err)
			break
		}
	}
	queue.Shutdown(context.Background())

	exporter := export.NewService(cfg.Batch.OutputDir, cfg.Batch.OutputFiles, cfg.Batch.XLSXPath, logger)
	if err := exporter.Export(ctx, agg); err != nil {
		logger.Error("failed to export results", "error", err)
		os.Exit(1)
	}

	for _, job := range constants.Jobs {
		summary := agg.Summary(job)
		logger.Info("job summary",
			"job", string(job),
			"found", summary[constants.StatusFound],
			"partial", summary[constants.StatusPartial],
			"exhausted", summary[constants.StatusExhausted],
			"output", exporter.OutputPath(job),
		)
	}

	if store != nil {
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, len(agg.Documents())); err != nil {
			logger.Error("failed to finish run", "run_id", runID, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch finished",
		"documents", len(agg.Documents()),
		"duration_ms", time.Since(start).Milliseconds(),
		slog.Bool("interrupted", ctx.Err() != nil),
	)
}
