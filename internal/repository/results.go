package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/common"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// ResultRepository persists batch runs and their extracted documents.
type ResultRepository interface {
	StartRun(ctx context.Context, inputDir string) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, documents int) error
	SaveDocument(ctx context.Context, runID uuid.UUID, doc results.Document) (uuid.UUID, error)
	HasContentHash(ctx context.Context, hash string) (bool, error)
	GetByContentHash(ctx context.Context, hash string) (*results.Document, error)
	ListDocuments(ctx context.Context, runID string) ([]results.Document, error)
}

type resultRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewResultRepository(db *DB, logger *slog.Logger) ResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultRepo{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (r *resultRepo) StartRun(ctx context.Context, inputDir string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`INSERT INTO runs (id, input_dir, started_at) VALUES (?, ?, ?)`),
		id.String(), inputDir, r.now())
	if err != nil {
		r.logger.Error("failed to start run", "input_dir", inputDir, "error", err)
		return uuid.Nil, fmt.Errorf("%w: start run: %w", common.ErrDatabase, err)
	}
	return id, nil
}

func (r *resultRepo) FinishRun(ctx context.Context, runID uuid.UUID, documents int) error {
	res, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind(`UPDATE runs SET finished_at = ?, documents = ? WHERE id = ?`),
		r.now(), documents, runID.String())
	if err != nil {
		r.logger.Error("failed to finish run", "run_id", runID, "error", err)
		return fmt.Errorf("%w: finish run: %w", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("RUN_NOT_FOUND", runID.String(), common.ErrNotFound)
	}
	return nil
}

// SaveDocument stores the document and its job outcomes in one transaction.
func (r *resultRepo) SaveDocument(ctx context.Context, runID uuid.UUID, doc results.Document) (uuid.UUID, error) {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New()
	_, err = tx.ExecContext(ctx, r.db.rebind(`INSERT INTO documents
		(id, run_id, file, content_hash, processed_at, access_key, natureza_operacao, number, serie, cpf_or_cnpj, razao_social)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id.String(), runID.String(), doc.File, doc.ContentHash, r.now(),
		nullString(doc.AccessKey.AccessKey),
		nullString(doc.Natureza.NaturezaOperacao),
		nullString(doc.NumeroSerie.Number),
		nullInt(doc.NumeroSerie.Serie),
		nullString(doc.Remetente.CPFOrCNPJ),
		nullString(doc.Remetente.RazaoSocial),
	)
	if err != nil {
		r.logger.Error("failed to save document", "file", doc.File, "error", err)
		return uuid.Nil, fmt.Errorf("%w: insert document: %w", common.ErrDatabase, err)
	}

	for _, job := range constants.Jobs {
		o, ok := doc.Outcomes[job]
		if !ok {
			continue
		}
		_, err = tx.ExecContext(ctx, r.db.rebind(`INSERT INTO job_outcomes
			(document_id, job, status, resolved, total, passes, failure, dump_path)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			id.String(), string(job), string(o.Status), o.Resolved, o.Total, o.Passes, o.Failure, o.Dump)
		if err != nil {
			r.logger.Error("failed to save job outcome", "file", doc.File, "job", string(job), "error", err)
			return uuid.Nil, fmt.Errorf("%w: insert outcome: %w", common.ErrDatabase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	return id, nil
}

func (r *resultRepo) HasContentHash(ctx context.Context, hash string) (bool, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx,
		r.db.rebind(`SELECT COUNT(*) FROM documents WHERE content_hash = ?`), hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: lookup hash: %w", common.ErrDatabase, err)
	}
	return n > 0, nil
}

// GetByContentHash returns the most recently processed document with hash.
func (r *resultRepo) GetByContentHash(ctx context.Context, hash string) (*results.Document, error) {
	docs, err := r.queryDocuments(ctx,
		`WHERE d.content_hash = ? ORDER BY d.processed_at DESC LIMIT 1`, hash)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", hash, common.ErrNotFound)
	}
	return &docs[0], nil
}

// ListDocuments returns the documents of a run in file order.
func (r *resultRepo) ListDocuments(ctx context.Context, runID string) ([]results.Document, error) {
	v := common.NewValidator().Field("run_id", runID, common.UUID)
	if v.HasErrors() {
		return nil, common.NewAppError("INVALID_RUN_ID", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return r.queryDocuments(ctx, `WHERE d.run_id = ? ORDER BY d.file`, runID)
}

func (r *resultRepo) queryDocuments(ctx context.Context, where string, args ...any) ([]results.Document, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(`SELECT d.id, d.file, d.content_hash,
		d.access_key, d.natureza_operacao, d.number, d.serie, d.cpf_or_cnpj, d.razao_social
		FROM documents d `+where), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var (
		docs []results.Document
		ids  []string
	)
	for rows.Next() {
		var (
			id, file, hash                      string
			key, natureza, number, taxID, razao sql.NullString
			serie                               sql.NullInt64
		)
		if err := rows.Scan(&id, &file, &hash, &key, &natureza, &number, &serie, &taxID, &razao); err != nil {
			return nil, fmt.Errorf("%w: scan document: %w", common.ErrDatabase, err)
		}
		d := results.NewDocument(file)
		d.ContentHash = hash
		d.AccessKey.AccessKey = stringPtr(key)
		d.Natureza.NaturezaOperacao = stringPtr(natureza)
		d.NumeroSerie.Number = stringPtr(number)
		if serie.Valid {
			d.NumeroSerie.Serie = results.Ptr(int(serie.Int64))
		}
		d.Remetente.CPFOrCNPJ = stringPtr(taxID)
		d.Remetente.RazaoSocial = stringPtr(razao)
		docs = append(docs, d)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	rows.Close()

	for i := range docs {
		if err := r.loadOutcomes(ctx, ids[i], &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *resultRepo) loadOutcomes(ctx context.Context, documentID string, d *results.Document) error {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(`SELECT job, status, resolved, total, passes, failure, dump_path
		FROM job_outcomes WHERE document_id = ?`), documentID)
	if err != nil {
		return fmt.Errorf("%w: query outcomes: %w", common.ErrDatabase, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			job, status string
			o           results.Outcome
		)
		if err := rows.Scan(&job, &status, &o.Resolved, &o.Total, &o.Passes, &o.Failure, &o.Dump); err != nil {
			return fmt.Errorf("%w: scan outcome: %w", common.ErrDatabase, err)
		}
		o.Status = constants.FieldStatus(status)
		d.Outcomes[constants.Job(job)] = o
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return results.Ptr(ns.String)
}
