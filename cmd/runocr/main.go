package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/export"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

func main() {
	cfg := common.LoadConfig()

	var (
		jobName = flag.String("job", string(constants.JobAccessKey), "job whose rendition is read (access_key, natureza_operacao, numero_serie, remetente)")
		extract = flag.Bool("extract", false, "print the job's record instead of the transcript")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall time limit")
	)
	flag.Parse()

	// stdout carries the transcript
	logger := common.NewLogger(os.Stderr, cfg.LogLevel)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-job name] [-extract] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	job := constants.Job(*jobName)
	if !job.Valid() {
		logger.Error("unknown job", "job", *jobName)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = common.WithDocument(ctx, path)

	scanner, engine, err := core.NewScanner(cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to set up ocr", "error", err)
		os.Exit(1)
	}
	defer engine.Close()
	opts := core.OptionsFromConfig(cfg.OCR, heuristics.Default())

	start := time.Now()
	if *extract {
		doc := core.NewProcessor(logger, scanner, nil, opts).ProcessJob(ctx, path, job)
		b, err := export.EncodeRecords([]any{doc.Record(job)})
		if err != nil {
			logger.Error("failed to encode record", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		logger.Info("extraction finished", "status", doc.Outcomes[job].Status, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	tr, err := scanner.Open(path).Scan(ctx, opts.Scan[job], func(scan.Pass) bool { return false })
	fmt.Println(tr.String())
	if err != nil {
		logger.Error("ocr failed", "passes", tr.Len(), "error", err)
		os.Exit(1)
	}
	logger.Info("ocr finished", "passes", tr.Len(), "duration_ms", time.Since(start).Milliseconds())
}
