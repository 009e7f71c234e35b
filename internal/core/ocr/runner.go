package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// maxLoggedStderr caps the stderr attached to "exec failed" lines.
const maxLoggedStderr = 8 << 10

// Runner executes pdftoppm and tesseract; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("running command", "cmd_line", name+" "+strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		exitCode := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitCode = ee.ExitCode()
		}
		logger.Error("exec failed",
			"cmd", name,
			"exit_code", exitCode,
			"duration_ms", elapsed,
			"error", err,
			"stderr", truncate(stderr.String(), maxLoggedStderr),
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	logger.Debug("exec ok", "cmd", name, "duration_ms", elapsed, "stdout_bytes", stdout.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

// truncate cuts s to max bytes, marking the cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
