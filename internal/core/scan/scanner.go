package scan

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

// Rasterizer renders every page of a PDF at a DPI, in page order.
type Rasterizer interface {
	Render(ctx context.Context, path string, dpi int) ([]image.Image, error)
}

// Recognizer reads the text of one page image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Rotator turns an image counter-clockwise by a multiple of 90 degrees.
type Rotator func(img image.Image, deg int) (image.Image, error)

// Preprocessor prepares a page before recognition (grayscale, contrast).
type Preprocessor func(img image.Image) image.Image

// Options select how a job wants its pages read.
type Options struct {
	DPI        int
	Preprocess bool
}

// Scanner drives the page × rotation sweep over a document.
type Scanner struct {
	raster     Rasterizer
	recognizer Recognizer
	rotate     Rotator
	preprocess Preprocessor
	logger     *slog.Logger
}

func NewScanner(r Rasterizer, rec Recognizer, rotate Rotator, pre Preprocessor, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{raster: r, recognizer: rec, rotate: rotate, preprocess: pre, logger: logger}
}

// Open starts a session on one document. A session caches rendered pages per DPI and
// recognized text per (DPI, preprocessing, page, rotation), so jobs that read the
// same rendition share the OCR work. A session is not safe for concurrent use.
func (s *Scanner) Open(path string) *Session {
	return &Session{
		s:     s,
		path:  path,
		name:  filepath.Base(path),
		pages: map[pageKey][]image.Image{},
		texts: map[textKey]string{},
	}
}

type pageKey struct {
	dpi        int
	preprocess bool
}

type textKey struct {
	pageKey
	page, rotation int
}

type Session struct {
	s     *Scanner
	path  string
	name  string
	pages map[pageKey][]image.Image
	texts map[textKey]string
}

// Scan visits pages in order and, within a page, rotations in Rotations order. visit
// returns true to stop the sweep. The transcript of every pass visited is returned;
// on a rasterizer or recognizer failure it holds the passes read so far and the error
// matches common.ErrCollaborator.
func (ss *Session) Scan(ctx context.Context, opts Options, visit func(Pass) bool) (Transcript, error) {
	var tr Transcript
	key := pageKey{dpi: opts.DPI, preprocess: opts.Preprocess}
	pages, err := ss.pagesFor(ctx, key)
	if err != nil {
		return tr, err
	}

	for i := range pages {
		for _, rot := range Rotations {
			if err := ctx.Err(); err != nil {
				return tr, err
			}
			tk := textKey{pageKey: key, page: i + 1, rotation: rot}
			text, ok := ss.texts[tk]
			if !ok {
				text, err = ss.recognize(ctx, pages[i], rot)
				if err != nil {
					return tr, common.CollaboratorError(ss.name, fmt.Errorf("page %d rot %d: %w", i+1, rot, err))
				}
				ss.texts[tk] = text
			}
			p := Pass{Page: i + 1, Rotation: rot, Text: text}
			tr.Add(p)
			if visit(p) {
				return tr, nil
			}
		}
	}
	return tr, nil
}

func (ss *Session) pagesFor(ctx context.Context, key pageKey) ([]image.Image, error) {
	if pages, ok := ss.pages[key]; ok {
		return pages, nil
	}
	pages, ok := ss.pages[pageKey{dpi: key.dpi}]
	if !ok {
		var err error
		pages, err = ss.s.raster.Render(ctx, ss.path, key.dpi)
		if err != nil {
			return nil, common.CollaboratorError(ss.name, err)
		}
		ss.pages[pageKey{dpi: key.dpi}] = pages
	}
	if key.preprocess && ss.s.preprocess != nil {
		prepared := make([]image.Image, len(pages))
		for i, pg := range pages {
			prepared[i] = ss.s.preprocess(pg)
		}
		pages = prepared
		ss.pages[key] = pages
	}
	return pages, nil
}

func (ss *Session) recognize(ctx context.Context, page image.Image, rot int) (string, error) {
	img := page
	if rot != 0 {
		var err error
		if img, err = ss.s.rotate(page, rot); err != nil {
			return "", err
		}
	}
	return ss.s.recognizer.Recognize(ctx, img)
}
