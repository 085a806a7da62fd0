package storage

import (
	"context"
	"fmt"
	"sync"

	"ecompipe/internal/ddl"
	"ecompipe/pkg/records"
)

// DDL holds a backend's table bootstrap hooks.
//
//   - Ensure infers a table definition from t and creates table if it does
//     not exist, via repo.Exec.
//   - Truncate renders the statement that empties table.
type DDL struct {
	Ensure   func(ctx context.Context, repo Repository, table string, t records.Table) error
	Truncate func(table string) string
}

// InferDDL assembles a dialect's hooks: Ensure derives a definition from
// the rows with from and hands it to ensure.
func InferDDL(
	from func(name string, t records.Table) (ddl.TableDef, error),
	ensure func(ctx context.Context, repo Repository, def ddl.TableDef) error,
	truncate func(table string) string,
) DDL {
	return DDL{
		Ensure: func(ctx context.Context, repo Repository, table string, t records.Table) error {
			def, err := from(table, t)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			return ensure(ctx, repo, def)
		},
		Truncate: truncate,
	}
}

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDL{}
)

// RegisterDDL registers (or replaces) the DDL hooks for the given storage
// kind. It is typically called from backend packages' init functions.
func RegisterDDL(kind string, d DDL) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = d
}

func lookupDDL(kind string) (DDL, error) {
	ddlMu.RLock()
	d, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return DDL{}, fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates table from the shape of t using the hooks registered
// for kind. Callers do not need to know which backend they are using.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, t records.Table) error {
	d, err := lookupDDL(kind)
	if err != nil {
		return err
	}
	if d.Ensure == nil {
		return fmt.Errorf("storage.kind=%q cannot create tables", kind)
	}
	if err := d.Ensure(ctx, repo, table, t); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

// Truncate empties table using the statement registered for kind.
func Truncate(ctx context.Context, kind string, repo Repository, table string) error {
	d, err := lookupDDL(kind)
	if err != nil {
		return err
	}
	if d.Truncate == nil {
		return fmt.Errorf("storage.kind=%q cannot truncate tables", kind)
	}
	if err := repo.Exec(ctx, d.Truncate(table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}
