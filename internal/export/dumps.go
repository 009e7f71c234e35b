package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/danfe-extractor/constants"
)

// DumpWriter stores diagnostic OCR transcripts as <dir>/<file><suffix>.txt.
type DumpWriter struct {
	dir    string
	logger *slog.Logger
}

func NewDumpWriter(dir string, logger *slog.Logger) *DumpWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DumpWriter{dir: dir, logger: logger}
}

// DumpPath returns where the transcript of job for file is written.
func (w *DumpWriter) DumpPath(file string, job constants.Job) string {
	return filepath.Join(w.dir, file+job.DumpSuffix()+".txt")
}

func (w *DumpWriter) WriteDump(_ context.Context, file string, job constants.Job, transcript string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}
	path := w.DumpPath(file, job)
	if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
		return "", err
	}
	w.logger.Debug("wrote ocr dump", "path", path, "bytes", len(transcript))
	return path, nil
}
