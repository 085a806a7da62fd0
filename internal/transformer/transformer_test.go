package transformer

import (
	"testing"

	"ecompipe/internal/transformer/builtin"
	"ecompipe/pkg/records"
)

func TestChainApplyTableDoesNotMutateInput(t *testing.T) {
	src := records.NewTable("sales", []string{"product_id", "title"}, []records.Record{
		{"product_id": " 1 ", "title": "Mug"},
		{"product_id": "1", "title": "Cup"},
	})
	chain := Chain{
		builtin.Normalize{},
		builtin.DeDup{Keys: []string{"product_id"}},
	}

	out := chain.ApplyTable(src)

	if got := out.Len(); got != 1 {
		t.Fatalf("rows=%d want 1", got)
	}
	if out.Rows[0]["product_id"] != "1" {
		t.Fatalf("product_id=%v want 1", out.Rows[0]["product_id"])
	}
	if src.Rows[0]["product_id"] != " 1 " || src.Len() != 2 {
		t.Fatalf("source table mutated: %#v", src.Rows)
	}
}
