package storage

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"ecompipe/pkg/records"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func feed(n int) <-chan []any {
	in := make(chan []any, n)
	for i := 0; i < n; i++ {
		in <- []any{int64(i)}
	}
	close(in)
	return in
}

func TestLoadBatches(t *testing.T) {
	t.Parallel()

	boom := errors.New("copy failed")
	tests := []struct {
		name      string
		rows      int
		batchSize int
		failBatch int // 1-based batch that errors; 0 never
		wantSizes []int
		wantTotal int64
		wantErr   error
	}{
		{name: "remainder flushed at close", rows: 7, batchSize: 3, wantSizes: []int{3, 3, 1}, wantTotal: 7},
		{name: "exact multiple", rows: 4, batchSize: 2, wantSizes: []int{2, 2}, wantTotal: 4},
		{name: "no rows", rows: 0, batchSize: 5, wantTotal: 0},
		{name: "stops at first failure", rows: 9, batchSize: 2, failBatch: 2, wantSizes: []int{2, 2}, wantTotal: 2, wantErr: boom},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var sizes []int
			copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
				sizes = append(sizes, len(rows))
				if len(sizes) == tt.failBatch {
					return 0, boom
				}
				return int64(len(rows)), nil
			}
			total, err := LoadBatches(context.Background(), quietLogger(), []string{"quantity"}, feed(tt.rows), tt.batchSize, copyFn)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if total != tt.wantTotal || !reflect.DeepEqual(sizes, tt.wantSizes) {
				t.Fatalf("total=%d sizes=%v, want %d %v", total, sizes, tt.wantTotal, tt.wantSizes)
			}
		})
	}
}

func TestLoadBatchesArguments(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := LoadBatches(context.Background(), nil, nil, feed(0), 0, noop); err == nil {
		t.Fatal("zero batch size accepted")
	}
	if _, err := LoadBatches(context.Background(), nil, nil, feed(0), 1, nil); err == nil {
		t.Fatal("nil copy func accepted")
	}
}

func TestLoadBatchesHonoursCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any) // never written, never closed
	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, quietLogger(), []string{"c"}, in, 2,
			func(context.Context, []string, [][]any) (int64, error) { return 0, nil })
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after cancel")
	}
}

// TestLoadTable_CopiesAllRowsInOrder checks LoadTable aligns cells with the
// column order, converts values and reports the total.
func TestLoadTable_CopiesAllRowsInOrder(t *testing.T) {
	t.Parallel()

	tbl := records.NewTable("top_products", []string{"product_id", "quantity"}, []records.Record{
		{"product_id": "1", "quantity": 3},
		{"product_id": "2"},
		{"product_id": "3", "quantity": int64(1)},
	})
	repo := &fakeRepo{}

	n, err := LoadTable(context.Background(), quietLogger(), repo, "ecompipe_top_products", tbl, 2)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if n != 3 || repo.calls != 2 {
		t.Fatalf("n=%d calls=%d want 3 and 2", n, repo.calls)
	}
	want := [][]any{{"1", int64(3)}, {"2", nil}, {"3", int64(1)}}
	if got := repo.copied["ecompipe_top_products"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows=%v want %v", got, want)
	}
}

func TestLoadTable_StopsOnCopyError(t *testing.T) {
	t.Parallel()

	rows := make([]records.Record, 10)
	for i := range rows {
		rows[i] = records.Record{"c": i}
	}
	repo := &fakeRepo{failAt: 2}
	n, err := LoadTable(context.Background(), quietLogger(), repo, "t", records.NewTable("t", []string{"c"}, rows), 3)
	if err == nil || !strings.Contains(err.Error(), "copy failed") {
		t.Fatalf("err=%v want copy failed", err)
	}
	if n != 3 {
		t.Fatalf("n=%d want 3", n)
	}
	if _, err := LoadTable(context.Background(), nil, repo, "t", records.Table{}, 0); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}
