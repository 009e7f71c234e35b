package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// Service writes a finished batch to its file sinks.
type Service struct {
	outputDir string
	files     map[constants.Job]string
	xlsxPath  string
	logger    *slog.Logger
}

func NewService(outputDir string, files map[constants.Job]string, xlsxPath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{outputDir: outputDir, files: files, xlsxPath: xlsxPath, logger: logger}
}

// OutputPath returns the JSON file of job.
func (s *Service) OutputPath(job constants.Job) string {
	name := s.files[job]
	if name == "" {
		name = job.DefaultOutputFile()
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.outputDir, name)
}

// Export writes one JSON file per job and, when configured, the XLSX workbook.
func (s *Service) Export(_ context.Context, agg *results.Aggregator) error {
	start := time.Now()
	for _, job := range constants.Jobs {
		path := s.OutputPath(job)
		recs := agg.Records(job)
		if err := WriteRecords(path, job, recs); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		s.logger.Info("records saved", "job", string(job), "path", path, "records", len(recs))
	}
	if s.xlsxPath != "" {
		if err := WriteWorkbook(s.xlsxPath, agg.Documents()); err != nil {
			return fmt.Errorf("write %s: %w", s.xlsxPath, err)
		}
		s.logger.Info("workbook saved", "path", s.xlsxPath)
	}
	s.logger.Debug("export finished", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
