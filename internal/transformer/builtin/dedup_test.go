package builtin

import (
	"reflect"
	"testing"

	"ecompipe/pkg/records"
)

func mk(id any, fields map[string]any) records.Record {
	r := records.Record{"product_id": id}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"title": "A"}),
		mk(1, map[string]any{"title": "B"}),
		mk("2", map[string]any{"title": "C"}),
	}
	kept, dropped := DeDup{Keys: []string{"product_id"}}.Split(in)
	want := []records.Record{in[0], in[2]}
	if !reflect.DeepEqual(kept, want) {
		t.Fatalf("kept: got %#v want %#v", kept, want)
	}
	if len(dropped) != 1 || dropped[0]["title"] != "B" {
		t.Fatalf("dropped: got %#v", dropped)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"title": "A"}),
		mk("1", map[string]any{"title": "B"}),
		mk("2", map[string]any{"title": "C"}),
	}
	got := DeDup{Keys: []string{"product_id"}, Policy: "keep-last"}.Apply(in)
	want := []records.Record{in[1], in[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupMostComplete(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"title": nil}),
		mk("1", map[string]any{"title": "B", "price": 1.0}),
		mk("2", map[string]any{"title": "C"}),
	}
	got := DeDup{Keys: []string{"product_id"}, Policy: "most-complete"}.Apply(in)
	want := []records.Record{in[1], in[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("most-complete: got %#v want %#v", got, want)
	}
}

func TestDeDupNullKeysPassThrough(t *testing.T) {
	in := []records.Record{
		mk(nil, map[string]any{"title": "A"}),
		mk(nil, map[string]any{"title": "B"}),
	}
	kept, dropped := DeDup{Keys: []string{"product_id"}}.Split(in)
	if len(kept) != 2 || len(dropped) != 0 {
		t.Fatalf("null keys must pass through: kept=%d dropped=%d", len(kept), len(dropped))
	}
}
