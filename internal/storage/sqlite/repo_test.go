package sqlite

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

func newMemRepo(tb testing.TB) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:"})
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestNewRepositoryAndCopyFrom checks NewRepository opens a DB and CopyFrom
// inserts rows, splitting statements at the parameter cap.
func TestNewRepositoryAndCopyFrom(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	if err := r.Exec(ctx, `CREATE TABLE "cf" (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	rows := make([][]any, 0, maxParams)
	for i := 0; i < maxParams/2+10; i++ {
		rows = append(rows, []any{int64(i), "x"})
	}
	n, err := r.CopyFrom(ctx, "cf", []string{"id", "name"}, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("CopyFrom affected: got %d want %d", n, len(rows))
	}

	var count int
	if err := r.DB().GetContext(ctx, &count, `SELECT COUNT(*) FROM "cf"`); err != nil {
		t.Fatalf("verify count: %v", err)
	}
	if count != len(rows) {
		t.Fatalf("row count mismatch: got %d want %d", count, len(rows))
	}
}

func TestCopyFrom_Errors(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	if _, err := r.CopyFrom(ctx, "missing", []string{"id"}, [][]any{{1}}); err == nil {
		t.Fatal("expected error for missing table")
	}
	if _, err := r.CopyFrom(ctx, "missing", nil, [][]any{{1}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if n, err := r.CopyFrom(ctx, "missing", []string{"id"}, nil); err != nil || n != 0 {
		t.Fatalf("empty rows: n=%d err=%v", n, err)
	}
	if _, _, err := NewRepository(ctx, Config{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// TestRoundTripThroughFactory creates, truncates and loads a derived table
// using only the backend-agnostic storage API.
func TestRoundTripThroughFactory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	tbl := records.NewTable("critical_stock", []string{"product_id", "current_stock", "min_stock", "is_critical_stock"}, []records.Record{
		{"product_id": "1", "current_stock": int64(4), "min_stock": int64(5), "is_critical_stock": true},
		{"product_id": "7", "current_stock": int64(0), "min_stock": int64(2), "is_critical_stock": true},
	})

	for i := 0; i < 2; i++ {
		if err := storage.EnsureTable(ctx, "sqlite", repo, "ecompipe_critical_stock", tbl); err != nil {
			t.Fatalf("EnsureTable #%d: %v", i, err)
		}
		if err := storage.Truncate(ctx, "sqlite", repo, "ecompipe_critical_stock"); err != nil {
			t.Fatalf("Truncate: %v", err)
		}
		n, err := storage.LoadTable(ctx, quiet(), repo, "ecompipe_critical_stock", tbl, 1)
		if err != nil || n != 2 {
			t.Fatalf("LoadTable: n=%d err=%v", n, err)
		}
	}

	w := repo.(*wrappedRepo)
	var got []struct {
		ProductID    string `db:"product_id"`
		CurrentStock int64  `db:"current_stock"`
		Critical     bool   `db:"is_critical_stock"`
	}
	if err := w.DB().SelectContext(ctx, &got, `SELECT product_id, current_stock, is_critical_stock FROM ecompipe_critical_stock ORDER BY product_id`); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].ProductID != "1" || got[1].CurrentStock != 0 || !got[1].Critical {
		t.Fatalf("rows = %+v", got)
	}
}
