package output

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

// SQLOptions configures the SQL sink.
type SQLOptions struct {
	Kind string
	DSN  string
	// TablePrefix is prepended to every table name, e.g. "ecom_".
	TablePrefix string
	// AutoCreate issues CREATE TABLE IF NOT EXISTS from inferred column types.
	AutoCreate bool
	// Truncate empties each table before loading.
	Truncate  bool
	BatchSize int
}

// WriteSQL loads every table into <TablePrefix><name> and returns the rows
// written per target table.
func WriteSQL(ctx context.Context, log logrus.FieldLogger, o SQLOptions, tables []records.Table) (map[string]int64, error) {
	if o.BatchSize <= 0 {
		return nil, fmt.Errorf("output: sql batch size must be > 0")
	}
	repo, err := storage.New(ctx, storage.Config{Kind: o.Kind, DSN: o.DSN})
	if err != nil {
		return nil, fmt.Errorf("output: open %s: %w", o.Kind, err)
	}
	defer repo.Close()

	written := make(map[string]int64, len(tables))
	for _, t := range tables {
		name := o.TablePrefix + t.Name
		if o.AutoCreate {
			if err := storage.EnsureTable(ctx, o.Kind, repo, name, t); err != nil {
				return nil, fmt.Errorf("output: create %s: %w", name, err)
			}
		}
		if o.Truncate {
			if err := storage.Truncate(ctx, o.Kind, repo, name); err != nil {
				return nil, fmt.Errorf("output: truncate %s: %w", name, err)
			}
		}
		n, err := storage.LoadTable(ctx, log, repo, name, t, o.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("output: load %s: %w", name, err)
		}
		written[name] = n
	}
	return written, nil
}
