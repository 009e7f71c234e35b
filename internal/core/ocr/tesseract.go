package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strconv"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

// Tesseract recognizes page images with the tesseract CLI.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tesseract{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Recognize writes img to a temporary PNG and reads it back with tesseract.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	f, err := os.CreateTemp("", "danfe-page-*.png")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(f.Name()); err != nil {
			t.logger.Warn("failed to remove temp image", "file", f.Name(), "error", err)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode page: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	// tesseract <file> stdout -l <lang> [--psm N] [--tessdata-dir D]
	args := []string{f.Name(), "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	log := t.logger
	if doc := common.DocumentFromContext(ctx); doc != "" {
		log = log.With("document", doc)
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, log, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return Normalize(string(out)), nil
}

func (t *Tesseract) Close() error { return nil }
