package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/danfe-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Batch    BatchConfig
	OCR      OCRConfig
	Database DatabaseConfig
	LogLevel string
}

// BatchConfig holds input/output locations and scheduling knobs
type BatchConfig struct {
	InputDir       string
	OutputDir      string
	DumpDir        string
	XLSXPath       string
	HeuristicsFile string
	Workers        int
	DocTimeout     time.Duration
	OutputFiles    map[constants.Job]string
}

// OCRConfig holds rasterizer and OCR engine configuration
type OCRConfig struct {
	Engine        string // "cli" | "gosseract"
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	MaxPages      int
	DPI           map[constants.Job]int
}

// DatabaseConfig holds result-store configuration
type DatabaseConfig struct {
	Driver          string // "sqlite" | "postgres"
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	outputs := make(map[constants.Job]string, len(constants.Jobs))
	dpi := make(map[constants.Job]int, len(constants.Jobs))
	for _, job := range constants.Jobs {
		key := strings.ToUpper(string(job))
		outputs[job] = getEnv("OUTPUT_"+key, job.DefaultOutputFile())
		dpi[job] = getEnvAsInt("DPI_"+key, job.DefaultDPI())
	}

	return &Config{
		Batch: BatchConfig{
			InputDir:       getEnv("DANFE_INPUT_DIR", "danfs"),
			OutputDir:      getEnv("DANFE_OUTPUT_DIR", "."),
			DumpDir:        getEnv("OCR_DUMP_DIR", "ocr_texts"),
			XLSXPath:       getEnv("DANFE_XLSX", ""),
			HeuristicsFile: getEnv("HEURISTICS_FILE", ""),
			Workers:        getEnvAsInt("DANFE_WORKERS", 1),
			DocTimeout:     getEnvAsDuration("DANFE_DOC_TIMEOUT", 0),
			OutputFiles:    outputs,
		},
		OCR: OCRConfig{
			Engine:        getEnv("OCR_ENGINE", "cli"),
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "por"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("OCR_PSM", 0),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			DPI:           dpi,
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DANFE_INPUT_DIR", c.Batch.InputDir, Required).
		Field("DANFE_OUTPUT_DIR", c.Batch.OutputDir, Required).
		Field("DANFE_WORKERS", c.Batch.Workers, Positive).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("cli", "gosseract")).
		Field("TESSERACT_LANG", c.OCR.TesseractLang, Required).
		Field("DB_DRIVER", c.Database.Driver, OneOf("sqlite", "postgres"))
	for _, job := range constants.Jobs {
		v.Field("DPI_"+strings.ToUpper(string(job)), c.OCR.DPI[job], Positive)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// RequireDatabase checks that a result store is configured.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
