package mssql

import (
	"context"

	"ecompipe/internal/storage"
	mssqlddl "ecompipe/internal/storage/mssql/ddl"
)

// newRepository is swapped by tests to avoid a live server.
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
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql", storage.InferDDL(mssqlddl.FromTable, mssqlddl.EnsureTable,
		func(table string) string { return "TRUNCATE TABLE " + mssqlddl.QuoteFQN(table) }))
}
