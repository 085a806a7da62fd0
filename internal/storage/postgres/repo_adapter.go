package postgres

import (
	"context"

	"ecompipe/internal/storage"
	pgddl "ecompipe/internal/storage/postgres/ddl"
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
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", storage.InferDDL(pgddl.FromTable, pgddl.EnsureTable,
		func(table string) string { return "TRUNCATE TABLE " + pgddl.QuoteFQN(table) }))
}
