//go:build !ocr

package ocr

import (
	"fmt"
	"log/slog"
)

// newGosseract is unavailable without the "ocr" build tag; rebuild with -tags ocr
// to link libtesseract.
func newGosseract(Config, *slog.Logger) (Engine, error) {
	return nil, fmt.Errorf("%w: %s requires -tags ocr", ErrEngineUnavailable, EngineGosseract)
}
