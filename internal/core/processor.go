package core

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/extract"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// DiagnosticSink persists the OCR transcript of a job that left fields unresolved.
type DiagnosticSink interface {
	WriteDump(ctx context.Context, file string, job constants.Job, transcript string) (location string, err error)
}

// Options configure the extraction engine. They are fixed at construction.
type Options struct {
	Heuristics heuristics.Heuristics
	Scan       map[constants.Job]scan.Options
}

// DefaultOptions returns the calibrated DPIs, with grayscale preprocessing for the
// número/série job.
func DefaultOptions(h heuristics.Heuristics) Options {
	o := Options{Heuristics: h, Scan: make(map[constants.Job]scan.Options, len(constants.Jobs))}
	for _, job := range constants.Jobs {
		o.Scan[job] = scan.Options{DPI: job.DefaultDPI(), Preprocess: job == constants.JobNumeroSerie}
	}
	return o
}

// OptionsFromConfig applies the configured DPIs on top of DefaultOptions.
func OptionsFromConfig(cfg common.OCRConfig, h heuristics.Heuristics) Options {
	o := DefaultOptions(h)
	for job, dpi := range cfg.DPI {
		if so, ok := o.Scan[job]; ok && dpi > 0 {
			so.DPI = dpi
			o.Scan[job] = so
		}
	}
	return o
}

// Processor runs the four extraction jobs over one document.
type Processor struct {
	logger  *slog.Logger
	scanner *scan.Scanner
	sink    DiagnosticSink
	opts    Options
}

func NewProcessor(logger *slog.Logger, scanner *scan.Scanner, sink DiagnosticSink, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, scanner: scanner, sink: sink, opts: opts}
}

// Process extracts every field of the PDF at path. It never fails: rasterizer and
// OCR failures are logged and recorded in the job's Outcome, and the job keeps
// whatever the passes read before the failure yielded.
func (p *Processor) Process(ctx context.Context, path string) results.Document {
	name := filepath.Base(path)
	ctx = common.WithDocument(ctx, name)
	doc := results.NewDocument(name)
	sess := p.scanner.Open(path)

	for _, job := range constants.Jobs {
		doc.Outcomes[job] = p.runJob(ctx, sess, job, &doc)
	}
	return doc
}

// ProcessJob runs a single job, for tools that inspect one field.
func (p *Processor) ProcessJob(ctx context.Context, path string, job constants.Job) results.Document {
	name := filepath.Base(path)
	ctx = common.WithDocument(ctx, name)
	doc := results.NewDocument(name)
	doc.Outcomes[job] = p.runJob(ctx, p.scanner.Open(path), job, &doc)
	return doc
}

func (p *Processor) runJob(ctx context.Context, sess *scan.Session, job constants.Job, doc *results.Document) results.Outcome {
	start := time.Now()
	ex := p.newExtractor(job)
	log := p.logger.With("file", doc.File, "job", string(job))
	if id := common.RunIDFromContext(ctx); id != "" {
		log = log.With("run_id", id)
	}

	var (
		tr  scan.Transcript
		err error
	)
	if err = ctx.Err(); err == nil {
		tr, err = sess.Scan(ctx, p.opts.Scan[job], ex.Observe)
	}
	ex.Finish()
	apply(ex, doc)

	resolved, total := ex.Resolved()
	out := results.Outcome{
		Status:   constants.StatusOf(resolved, total),
		Resolved: resolved,
		Total:    total,
		Passes:   tr.Len(),
	}
	if err != nil {
		out.Failure = err.Error()
		switch {
		case errors.Is(err, common.ErrCollaborator):
			log.Error("ocr failed, keeping passes read so far", "passes", tr.Len(), "error", err)
		default:
			log.Warn("job interrupted", "passes", tr.Len(), "error", err)
		}
	}

	if resolved < total && p.sink != nil {
		loc, werr := p.sink.WriteDump(context.WithoutCancel(ctx), doc.File, job, tr.String())
		if werr != nil {
			log.Warn("failed to write ocr dump", "error", werr)
		} else {
			out.Dump = loc
		}
	}

	log.Info("job finished",
		"status", out.Status,
		"resolved", resolved,
		"total", total,
		"passes", out.Passes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}

func (p *Processor) newExtractor(job constants.Job) extract.Extractor {
	h := p.opts.Heuristics
	switch job {
	case constants.JobNatureza:
		return extract.NewNaturezaExtractor(h)
	case constants.JobNumeroSerie:
		return extract.NewNumeroSerieExtractor(h)
	case constants.JobRemetente:
		return extract.NewRemetenteExtractor(h)
	default:
		return extract.NewAccessKeyExtractor()
	}
}

// apply copies the extractor's resolved values into the document records.
func apply(ex extract.Extractor, doc *results.Document) {
	switch e := ex.(type) {
	case *extract.AccessKeyExtractor:
		if c, ok := e.Key(); ok {
			doc.AccessKey.AccessKey = results.Ptr(c.Value)
		}
	case *extract.NaturezaExtractor:
		if c, ok := e.Value(); ok {
			doc.Natureza.NaturezaOperacao = results.Ptr(c.Value)
		}
	case *extract.NumeroSerieExtractor:
		if n, _, ok := e.Number(); ok {
			doc.NumeroSerie.Number = results.Ptr(extract.FormatNumber(n))
		}
		if s, _, ok := e.Serie(); ok {
			doc.NumeroSerie.Serie = results.Ptr(s)
		}
	case *extract.RemetenteExtractor:
		if id, _, ok := e.TaxID(); ok {
			doc.Remetente.CPFOrCNPJ = results.Ptr(id.Value)
		}
		if c, ok := e.LegalName(); ok {
			doc.Remetente.RazaoSocial = results.Ptr(c.Value)
		}
	}
}
