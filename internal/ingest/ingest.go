// Package ingest discovers DANFE PDFs on the local filesystem.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/danfe-extractor/constants"
)

// ListDocuments returns the PDFs directly inside dir (extension matched without case),
// sorted by file name so output order is stable across runs.
func ListDocuments(dir string, skipHidden bool) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("input directory is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !constants.IsDocument(e.Name()) {
			continue
		}
		if skipHidden && IsHidden(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Slice(out, func(i, j int) bool { return filepath.Base(out[i]) < filepath.Base(out[j]) })
	return out, nil
}

// HashFile returns the hex-encoded SHA256 of the file content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
