package repository

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		input_dir   TEXT NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		documents   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id                TEXT PRIMARY KEY,
		run_id            TEXT NOT NULL REFERENCES runs(id),
		file              TEXT NOT NULL,
		content_hash      TEXT NOT NULL,
		processed_at      TIMESTAMP NOT NULL,
		access_key        TEXT,
		natureza_operacao TEXT,
		number            TEXT,
		serie             INTEGER,
		cpf_or_cnpj       TEXT,
		razao_social      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS documents_content_hash_idx ON documents (content_hash)`,
	`CREATE INDEX IF NOT EXISTS documents_run_idx ON documents (run_id)`,
	`CREATE TABLE IF NOT EXISTS job_outcomes (
		document_id TEXT NOT NULL REFERENCES documents(id),
		job         TEXT NOT NULL,
		status      TEXT NOT NULL,
		resolved    INTEGER NOT NULL,
		total       INTEGER NOT NULL,
		passes      INTEGER NOT NULL,
		failure     TEXT NOT NULL DEFAULT '',
		dump_path   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (document_id, job)
	)`,
}

// Migrate creates the result tables when missing.
func Migrate(ctx context.Context, d *DB) error {
	for i, stmt := range migrations {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return common.NewAppError("MIGRATION_FAILED", fmt.Sprintf("statement %d", i+1), fmt.Errorf("%w: %w", common.ErrDatabase, err))
		}
	}
	return nil
}
