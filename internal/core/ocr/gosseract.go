//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes page images in-process through libtesseract.
// A gosseract client is not safe for concurrent use, so calls are serialized.
type Gosseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	logger *slog.Logger
}

func newGosseract(cfg Config, logger *slog.Logger) (Engine, error) {
	c := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			c.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(cfg.Lang); err != nil {
		c.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			c.Close()
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	return &Gosseract{client: c, logger: logger}, nil
}

func (g *Gosseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return Normalize(text), nil
}

func (g *Gosseract) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
