// Package ocr turns DANFE PDFs into page images and page images into text.
//
// Rasterization shells out to pdftoppm. Recognition runs either the tesseract CLI
// or, when built with -tags ocr, libtesseract through gosseract.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

// Engine names accepted in Config.Engine.
const (
	EngineCLI       = "cli"
	EngineGosseract = "gosseract"
)

// ErrEngineUnavailable is returned when the configured engine was not compiled in.
var ErrEngineUnavailable = errors.New("ocr engine not available in this build")

type Config struct {
	Engine    string // EngineCLI | EngineGosseract; if empty -> EngineCLI
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "por"
	TessdataDir string
	PSM         int // 0 = tesseract default
	MaxPages    int // 0 = no limit
}

// ConfigFrom maps the application OCR settings.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Engine:      c.Engine,
		Pdftoppm:    c.Pdftoppm,
		Tesseract:   c.Tesseract,
		Lang:        c.TesseractLang,
		TessdataDir: c.TessdataDir,
		PSM:         c.PSM,
		MaxPages:    c.MaxPages,
	}
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = EngineCLI
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "por"
	}
	return c
}

// Engine reads the text of one page image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// NewEngine builds the engine named by cfg.Engine.
func NewEngine(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	switch cfg.Engine {
	case EngineCLI:
		return NewTesseract(cfg, ExecRunner{}, logger), nil
	case EngineGosseract:
		return newGosseract(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}
