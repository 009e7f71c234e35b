package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/danfe-extractor/internal/common"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

type Config struct {
	Driver           Dialect
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the application database settings.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		Driver:          Dialect(c.Driver),
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// DB is an open result store.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
}

// Open connects to the configured backend. Postgres goes through a pgx pool wrapped
// as *sql.DB; sqlite uses the pure-Go modernc driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)
	switch cfg.Driver {
	case Postgres:
		return openPostgres(ctx, cfg, logger)
	case SQLite, "":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.WrapError(err, "parse dsn")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "danfe-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dialCtx, cancel := common.WithOptionalTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}

	logger.Info("successfully connected to database")
	return &DB{SQL: stdlib.OpenDBFromPool(pool), Dialect: Postgres, pool: pool}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open(string(SQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	// one writer; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	logger.Info("successfully connected to database")
	return &DB{SQL: db, Dialect: SQLite}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if err := d.SQL.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, d *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database", "driver", d.Dialect)
	ctx, cancel := common.WithOptionalTimeout(ctx, timeout)
	defer cancel()
	if d.pool != nil {
		if err := d.pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", common.ErrDatabase, err)
		}
	} else if err := d.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	logger.Debug("database ping successful")
	return nil
}

// rebind rewrites ? placeholders for the dialect.
func (d *DB) rebind(query string) string {
	if d.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
