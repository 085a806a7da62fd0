package storage

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
)

// fakeRepo is a minimal Repository implementation for tests. It records
// every statement and copied row.
type fakeRepo struct {
	closed bool
	execs  []string
	copied map[string][][]any
	// failAt makes the n-th CopyFrom call fail when positive.
	failAt int
	calls  int
}

func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return 0, errors.New("copy failed")
	}
	if f.copied == nil {
		f.copied = map[string][][]any{}
	}
	for _, r := range rows {
		f.copied[table] = append(f.copied[table], append([]any(nil), r...))
	}
	return int64(len(rows)), nil
}

func (f *fakeRepo) Close() { f.closed = true }

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var opened []string
	Register("reg-test", func(_ context.Context, cfg Config) (Repository, error) {
		opened = append(opened, "first:"+cfg.DSN)
		return &fakeRepo{}, nil
	})
	// A second registration replaces the first.
	Register("reg-test", func(_ context.Context, cfg Config) (Repository, error) {
		opened = append(opened, "second:"+cfg.DSN)
		return &fakeRepo{}, nil
	})
	Register("reg-test-err", func(context.Context, Config) (Repository, error) { return nil, boom })

	repo, err := New(context.Background(), Config{Kind: "reg-test", DSN: "file:x.db"})
	if err != nil || repo == nil {
		t.Fatalf("New() = %v, %v", repo, err)
	}
	if !reflect.DeepEqual(opened, []string{"second:file:x.db"}) {
		t.Fatalf("opened = %q", opened)
	}

	if _, err := New(context.Background(), Config{Kind: "reg-test-err"}); !errors.Is(err, boom) {
		t.Fatalf("New() error = %v, want %v", err, boom)
	}
	if _, err := New(context.Background(), Config{Kind: "nope"}); err == nil || err.Error() != "unsupported storage.kind=nope" {
		t.Fatalf("New(unknown) error = %v", err)
	}

	kinds := ListKinds()
	if !sort.StringsAreSorted(kinds) {
		t.Fatalf("ListKinds() not sorted: %v", kinds)
	}
	if i := sort.SearchStrings(kinds, "reg-test"); i == len(kinds) || kinds[i] != "reg-test" {
		t.Fatalf("ListKinds() = %v, missing reg-test", kinds)
	}
}
