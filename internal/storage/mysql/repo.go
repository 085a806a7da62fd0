// Package mysql implements a MySQL-backed storage.Repository using sqlx and
// github.com/go-sql-driver/mysql. Rows are written with multi-row INSERTs in
// one transaction per batch.
package mysql

import (
	"context"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"ecompipe/internal/storage"
	myddl "ecompipe/internal/storage/mysql/ddl"
)

// maxParams stays below the protocol limit of 65535 placeholders.
const maxParams = 60000

// Config holds MySQL repository configuration.
type Config struct {
	// DSN in go-sql-driver form: user:pass@tcp(host:3306)/db?params
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sqlx.DB
}

// NormalizeDSN parses dsn and forces the options the loader relies on:
// parseTime for DATETIME columns and UTC as the session location.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// CopyFrom inserts rows into table.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := storage.InsertRows(ctx, r.db, myddl.QuoteIdent, myddl.QuoteFQN(table), columns, rows, maxParams)
	if err != nil {
		return n, fmt.Errorf("mysql: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}
