package mysql

import (
	"context"

	"ecompipe/internal/storage"
	myddl "ecompipe/internal/storage/mysql/ddl"
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
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql", storage.InferDDL(myddl.FromTable, myddl.EnsureTable,
		func(table string) string { return "TRUNCATE TABLE " + myddl.QuoteFQN(table) }))
}
