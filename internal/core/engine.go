package core

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
)

// NewScanner wires pdftoppm and the configured OCR engine into a scan.Scanner.
// The returned engine must be closed by the caller.
func NewScanner(cfg common.OCRConfig, logger *slog.Logger) (*scan.Scanner, ocr.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	oc := ocr.ConfigFrom(cfg)
	engine, err := ocr.NewEngine(oc, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("ocr engine: %w", err)
	}
	raster := ocr.NewPdftoppm(oc, ocr.ExecRunner{}, logger)
	s := scan.NewScanner(raster, engine, ocr.Rotate, grayscale, logger)
	return s, engine, nil
}

func grayscale(img image.Image) image.Image { return ocr.Preprocess(img) }
