package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Pdftoppm renders PDF pages to images with poppler's pdftoppm.
type Pdftoppm struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPdftoppm(cfg Config, runner Runner, logger *slog.Logger) *Pdftoppm {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Pdftoppm{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Render rasterizes every page of the PDF at path at the given DPI, in page order.
func (p *Pdftoppm) Render(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "danfe-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png [-l <max>] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if p.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := p.runner.Run(ctx, p.cfg.Pdftoppm, p.logger, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images for %s", filepath.Base(path))
	}

	pages := make([]image.Image, 0, len(matches))
	for _, m := range matches {
		img, err := decodePNG(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, img)
	}
	p.logger.Debug("rasterized pdf", "path", path, "dpi", dpi, "pages", len(pages))
	return pages, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
