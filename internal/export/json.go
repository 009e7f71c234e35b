package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// EncodeRecords renders records as a UTF-8 JSON array with 2-space indentation and
// without HTML escaping, so accented names are written as-is.
func EncodeRecords(records []any) ([]byte, error) {
	if records == nil {
		records = []any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRecords validates job's records and writes them to path. The file is replaced
// atomically.
func WriteRecords(path string, job constants.Job, records []any) error {
	b, err := EncodeRecords(records)
	if err != nil {
		return fmt.Errorf("encode %s records: %w", job, err)
	}
	if err := results.ValidateRecords(job, b); err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
