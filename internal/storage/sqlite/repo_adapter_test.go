package sqlite

import (
	"context"
	"strings"
	"testing"

	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

func TestFactoryUsesNewRepositoryHook(t *testing.T) {
	// Not parallel: swaps the package-level hook.
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotDSN string
		closed bool
		fake   = &Repository{}
	)
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return fake, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "file:ecom.db"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotDSN != "file:ecom.db" {
		t.Errorf("hook DSN = %q", gotDSN)
	}
	if w, ok := repo.(*wrappedRepo); !ok || w.Repository != fake {
		t.Fatalf("storage.New() = %T, want wrapped fake", repo)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close() did not reach the close func")
	}
}

type recordingRepo struct {
	storage.Repository
	execs []string
}

func (r *recordingRepo) Exec(_ context.Context, sql string) error {
	r.execs = append(r.execs, sql)
	return nil
}

func TestSQLiteDDLRegistration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &recordingRepo{}
	tbl := records.NewTable("sales_by_category", []string{"category", "sales_total"},
		[]records.Record{{"category": "home", "sales_total": 20.0}})

	if err := storage.EnsureTable(ctx, "sqlite", repo, "ecom_sales_by_category", tbl); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if err := storage.Truncate(ctx, "sqlite", repo, "ecom_sales_by_category"); err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	want := []string{
		"CREATE TABLE IF NOT EXISTS \"ecom_sales_by_category\" (\n  \"category\" TEXT NOT NULL,\n  \"sales_total\" REAL NOT NULL\n);",
		`DELETE FROM "ecom_sales_by_category"`,
	}
	if strings.Join(repo.execs, "|") != strings.Join(want, "|") {
		t.Fatalf("execs = %q, want %q", repo.execs, want)
	}
}
