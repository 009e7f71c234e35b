package common

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.Batch.InputDir != "danfs" {
		t.Errorf("InputDir = %q, want danfs", cfg.Batch.InputDir)
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Batch.Workers)
	}
	if cfg.OCR.TesseractLang != "por" {
		t.Errorf("TesseractLang = %q, want por", cfg.OCR.TesseractLang)
	}
	wantDPI := map[constants.Job]int{
		constants.JobAccessKey:   300,
		constants.JobNatureza:    600,
		constants.JobNumeroSerie: 600,
		constants.JobRemetente:   300,
	}
	for job, dpi := range wantDPI {
		if got := cfg.OCR.DPI[job]; got != dpi {
			t.Errorf("DPI[%s] = %d, want %d", job, got, dpi)
		}
	}
	if got := cfg.Batch.OutputFiles[constants.JobAccessKey]; got != "chaves_danfs.json" {
		t.Errorf("OutputFiles[access_key] = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DANFE_WORKERS", "4")
	t.Setenv("DANFE_DOC_TIMEOUT", "90s")
	t.Setenv("DPI_NATUREZA_OPERACAO", "400")
	t.Setenv("OUTPUT_REMETENTE", "senders.json")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := LoadConfig()
	if cfg.Batch.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Batch.Workers)
	}
	if cfg.Batch.DocTimeout != 90*time.Second {
		t.Errorf("DocTimeout = %v, want 90s", cfg.Batch.DocTimeout)
	}
	if cfg.OCR.DPI[constants.JobNatureza] != 400 {
		t.Errorf("DPI[natureza] = %d, want 400", cfg.OCR.DPI[constants.JobNatureza])
	}
	if cfg.Batch.OutputFiles[constants.JobRemetente] != "senders.json" {
		t.Errorf("OutputFiles[remetente] = %q", cfg.Batch.OutputFiles[constants.JobRemetente])
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("MaxConns = %d, want default 10 for unparsable value", cfg.Database.MaxConns)
	}
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Batch.Workers = 0
	cfg.OCR.Engine = "paddle"
	cfg.OCR.DPI[constants.JobRemetente] = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
	}
	for _, field := range []string{"DANFE_WORKERS", "OCR_ENGINE", "DPI_REMETENTE"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validate() error %q does not mention %s", err, field)
		}
	}

	if err := cfg.RequireDatabase(); err == nil {
		t.Error("RequireDatabase() error = nil with empty DB_URL")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
