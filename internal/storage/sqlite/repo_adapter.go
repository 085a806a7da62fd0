package sqlite

import (
	"context"

	"ecompipe/internal/storage"
	sqliteddl "ecompipe/internal/storage/sqlite/ddl"
)

// newRepository is swapped by tests to avoid a live database file.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// SQLite has no TRUNCATE; an unqualified DELETE is optimized into one.
	storage.RegisterDDL("sqlite", storage.InferDDL(sqliteddl.FromTable, sqliteddl.EnsureTable,
		func(table string) string { return "DELETE FROM " + sqliteddl.QuoteFQN(table) }))
}
