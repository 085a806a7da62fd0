package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecompipe/internal/datasource"
)

// TestLocalOpen covers success, missing file, and pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string
		makeCtx         func() context.Context
		wantErrIs       error
		wantErrContains string
		wantContent     string
	}

	write := func(t *testing.T, body string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "sales.csv")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write test file: %v", err)
		}
		return p
	}

	cases := []tc{
		{
			name:        "success_reads_content",
			prepare:     func(t *testing.T) string { return write(t, "product_id,quantity\n1,3\n") },
			makeCtx:     context.Background,
			wantContent: "product_id,quantity\n1,3\n",
		},
		{
			name:            "missing_file_errors_with_wrapping",
			prepare:         func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.csv") },
			makeCtx:         context.Background,
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name:    "pre_canceled_context_short_circuits",
			prepare: func(t *testing.T) string { return write(t, "ignored") },
			makeCtx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			rc, err := NewLocal(c.prepare(t)).Open(c.makeCtx())
			if c.wantErrIs != nil {
				if !errors.Is(err, c.wantErrIs) {
					t.Fatalf("err=%v want errors.Is %v", err, c.wantErrIs)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("err=%q want substring %q", err, c.wantErrContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(b) != c.wantContent {
				t.Fatalf("content=%q want %q", b, c.wantContent)
			}
		})
	}
}

func TestLocalFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]datasource.Format{
		"data/products.json":     datasource.FormatJSON,
		"data/PRODUCTS.JSON":     datasource.FormatJSON,
		"data/products.csv":      datasource.FormatCSV,
		"data/products":          datasource.FormatCSV,
		"http://x/p.json?page=1": datasource.FormatJSON,
	}
	for path, want := range cases {
		if got := NewLocal(path).Format(); got != want {
			t.Fatalf("Format(%q)=%q want %q", path, got, want)
		}
	}
	if NewLocal("a.csv").Path() != "a.csv" {
		t.Fatal("Path mismatch")
	}
}
