// Package storage contains storage-agnostic contracts and utilities: the
// Repository interface every SQL backend implements, a factory keyed by
// storage kind, per-kind DDL bootstrappers and a batched loader.
//
// Backends register themselves from init; importing internal/storage/all
// enables every built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is one open connection (or pool) to a SQL backend.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned with columns into table and returns
	// the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and opens a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	factMu    sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It is called from backend
// packages' init functions; registering a kind twice replaces the factory.
func Register(kind string, f Factory) {
	factMu.Lock()
	defer factMu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	factMu.RLock()
	f, ok := factories[cfg.Kind]
	factMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds lists the registered backend kinds in sorted order.
func ListKinds() []string {
	factMu.RLock()
	defer factMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
