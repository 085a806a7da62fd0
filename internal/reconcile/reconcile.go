// Package reconcile joins the sales, catalog and inventory tables into the
// unified record set.
//
// Sales is the anchor: every sale row appears in the output exactly once,
// whether or not the catalog or inventory know its product. Right-hand tables
// are collapsed to one row per key before the join so duplicates there can
// never multiply sales.
package reconcile

import (
	"strings"

	"ecompipe/internal/diag"
	"ecompipe/internal/schema"
	"ecompipe/internal/transformer/builtin"
	"ecompipe/pkg/records"
)

// UnifiedTable is the name given to the reconciled table.
const UnifiedTable = "unified"

const stage = "reconcile"

// Suffixes disambiguate a non-key column present on both sides of a join.
type Suffixes struct {
	Left  string
	Right string
}

// Options configures Reconcile.
type Options struct {
	// CatalogSuffixes apply to sales LEFT JOIN catalog.
	CatalogSuffixes Suffixes
	// InventorySuffixes apply to (sales+catalog) LEFT JOIN inventory.
	InventorySuffixes Suffixes
}

// DefaultOptions returns the suffixes used by the pipeline.
func DefaultOptions() Options {
	return Options{
		CatalogSuffixes:   Suffixes{Left: "_sales", Right: "_catalog"},
		InventorySuffixes: Suffixes{Left: "_merged", Right: "_inventory"},
	}
}

// Unmatched tracks left rows whose key found no partner on the right.
type Unmatched struct {
	// Rows counts unmatched left rows, including rows with a null key.
	Rows int `json:"rows"`
	// Keys lists distinct non-null unmatched keys in first-seen order.
	Keys []string `json:"keys,omitempty"`
}

// Result is the outcome of Reconcile.
type Result struct {
	Unified         records.Table
	CatalogMisses   Unmatched
	InventoryMisses Unmatched
	CatalogDupes    int
	InventoryDupes  int
	Diagnostics     diag.List
}

// Reconcile performs sales LEFT JOIN catalog followed by LEFT JOIN inventory
// on product_id. All three tables must already be schema-normalized. A
// missing product_id in any input is a *schema.Error.
func Reconcile(catalog, sales, inventory records.Table, opts Options) (*Result, error) {
	for _, t := range []records.Table{sales, catalog, inventory} {
		if err := schema.RequireColumns(t.Name, t.Columns, schema.ProductID); err != nil {
			return nil, err
		}
	}

	withCatalog, err := LeftJoin(sales, catalog, schema.ProductID, opts.CatalogSuffixes)
	if err != nil {
		return nil, err
	}
	unified, err := LeftJoin(withCatalog.Table, inventory, schema.ProductID, opts.InventorySuffixes)
	if err != nil {
		return nil, err
	}
	unified.Table.Name = UnifiedTable

	res := &Result{
		Unified:         unified.Table,
		CatalogMisses:   withCatalog.Unmatched,
		InventoryMisses: unified.Unmatched,
		CatalogDupes:    withCatalog.DroppedDuplicates,
		InventoryDupes:  unified.DroppedDuplicates,
	}
	res.Diagnostics.Add(stage, "unmatched_catalog_rows", res.CatalogMisses.Rows, keysDetail(res.CatalogMisses.Keys))
	res.Diagnostics.Add(stage, "unmatched_inventory_rows", res.InventoryMisses.Rows, keysDetail(res.InventoryMisses.Keys))
	res.Diagnostics.Add(stage, "duplicate_catalog_keys", res.CatalogDupes, "kept first occurrence")
	res.Diagnostics.Add(stage, "duplicate_inventory_keys", res.InventoryDupes, "kept first occurrence")
	return res, nil
}

// JoinResult is the outcome of a single LeftJoin.
type JoinResult struct {
	Table             records.Table
	Unmatched         Unmatched
	DroppedDuplicates int
}

// LeftJoin joins right onto left by key. The output has one row per left row,
// in left order. Columns are left's columns followed by right's non-key
// columns; a non-key column present on both sides gets sfx.Left and sfx.Right
// appended on the respective side. Right rows sharing a key are collapsed to
// the first occurrence.
func LeftJoin(left, right records.Table, key string, sfx Suffixes) (JoinResult, error) {
	if err := schema.RequireColumns(left.Name, left.Columns, key); err != nil {
		return JoinResult{}, err
	}
	if err := schema.RequireColumns(right.Name, right.Columns, key); err != nil {
		return JoinResult{}, err
	}

	rightCols := make([]string, 0, len(right.Columns))
	for _, c := range right.Columns {
		if c != key {
			rightCols = append(rightCols, c)
		}
	}
	inRight := make(map[string]struct{}, len(rightCols))
	for _, c := range rightCols {
		inRight[c] = struct{}{}
	}
	inLeft := make(map[string]struct{}, len(left.Columns))
	for _, c := range left.Columns {
		inLeft[c] = struct{}{}
	}

	leftOut := make([]string, len(left.Columns))
	for i, c := range left.Columns {
		leftOut[i] = c
		if _, clash := inRight[c]; clash && c != key {
			leftOut[i] = c + sfx.Left
		}
	}
	rightOut := make([]string, len(rightCols))
	for i, c := range rightCols {
		rightOut[i] = c
		if _, clash := inLeft[c]; clash {
			rightOut[i] = c + sfx.Right
		}
	}

	columns := make([]string, 0, len(leftOut)+len(rightOut))
	columns = append(columns, leftOut...)
	columns = append(columns, rightOut...)
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return JoinResult{}, &schema.Error{Table: left.Name + "+" + right.Name, Column: c, Err: schema.ErrDuplicateColumn}
		}
		seen[c] = struct{}{}
	}

	kept, dropped := builtin.DeDup{Keys: []string{key}, Policy: "keep-first"}.Split(right.Rows)
	index := make(map[string]records.Record, len(kept))
	for _, r := range kept {
		if k, ok := records.KeyString(r[key]); ok {
			index[k] = r
		}
	}

	res := JoinResult{DroppedDuplicates: len(dropped)}
	missed := make(map[string]struct{})
	rows := make([]records.Record, len(left.Rows))
	for ri, lr := range left.Rows {
		out := make(records.Record, len(columns))
		for i, c := range left.Columns {
			out[leftOut[i]] = lr[c]
		}

		k, ok := records.KeyString(lr[key])
		match, found := index[k]
		if !ok {
			found = false
		}
		for i, c := range rightCols {
			if found {
				out[rightOut[i]] = match[c]
			} else {
				out[rightOut[i]] = nil
			}
		}
		if !found {
			res.Unmatched.Rows++
			if ok {
				if _, dup := missed[k]; !dup {
					missed[k] = struct{}{}
					res.Unmatched.Keys = append(res.Unmatched.Keys, k)
				}
			}
		}
		rows[ri] = out
	}

	res.Table = records.Table{Name: left.Name, Columns: columns, Rows: rows}
	return res, nil
}

func keysDetail(keys []string) string {
	const maxKeys = 5
	if len(keys) == 0 {
		return ""
	}
	if len(keys) > maxKeys {
		return "keys: " + strings.Join(keys[:maxKeys], ", ") + ", ..."
	}
	return "keys: " + strings.Join(keys, ", ")
}
