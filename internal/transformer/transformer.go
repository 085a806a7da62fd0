// Package transformer defines the record-level transform chain applied to
// freshly parsed input tables before schema normalization.
package transformer

import "ecompipe/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate the
// records in place and may return a shorter slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// ApplyTable runs the chain over a copy of t's rows and returns the new table.
// Columns are left as they are.
func (c Chain) ApplyTable(t records.Table) records.Table {
	out := t.Clone()
	out.Rows = c.Apply(out.Rows)
	return out
}
