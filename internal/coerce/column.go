package coerce

import (
	"github.com/shopspring/decimal"

	"ecompipe/pkg/records"
)

// Stats counts what a column coercion had to repair.
type Stats struct {
	// Missing is set when none of the candidate columns exist.
	Missing bool
	// Nulls counts null cells.
	Nulls int
	// Unparsable counts non-null cells that were not numeric.
	Unparsable int
	// Fractional counts cells whose fraction was truncated.
	Fractional int
	// Negative counts cells clamped to zero.
	Negative int
	// Overflow counts cells too large for an int64, set to zero.
	Overflow int
}

// DecimalColumn resolves one value per row from the first non-null candidate
// column and parses it. Nulls and unparsable values stay null.
func DecimalColumn(t records.Table, candidates ...string) ([]decimal.NullDecimal, Stats) {
	cols := t.Present(candidates...)
	out := make([]decimal.NullDecimal, t.Len())
	st := Stats{Missing: len(cols) == 0}
	for i, r := range t.Rows {
		v := FirstNonNull(r, cols)
		if v == nil {
			st.Nulls++
			continue
		}
		d, ok := Decimal(v)
		if !ok {
			st.Unparsable++
			continue
		}
		out[i] = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return out, st
}

// CountColumn parses a non-negative integer column. A missing column yields
// all zeros; null, unparsable and out-of-range cells become 0; fractions
// truncate; negatives clamp to 0.
func CountColumn(t records.Table, candidates ...string) ([]int64, Stats) {
	cols := t.Present(candidates...)
	out := make([]int64, t.Len())
	st := Stats{Missing: len(cols) == 0}
	if st.Missing {
		return out, st
	}
	for i, r := range t.Rows {
		v := FirstNonNull(r, cols)
		if v == nil {
			st.Nulls++
			continue
		}
		d, ok := Decimal(v)
		if !ok {
			st.Unparsable++
			continue
		}
		n, fractional, inRange := Whole(d)
		if !inRange {
			if d.IsNegative() {
				st.Negative++
			} else {
				st.Overflow++
			}
			continue
		}
		if fractional {
			st.Fractional++
		}
		if n < 0 {
			st.Negative++
			n = 0
		}
		out[i] = n
	}
	return out, st
}

// StringColumn resolves the first non-null candidate per row, rendered as a
// string. ok is false when no candidate column exists.
func StringColumn(t records.Table, candidates ...string) (vals []any, ok bool) {
	cols := t.Present(candidates...)
	if len(cols) == 0 {
		return nil, false
	}
	vals = make([]any, t.Len())
	for i, r := range t.Rows {
		if v := FirstNonNull(r, cols); v != nil {
			vals[i] = records.String(v)
		}
	}
	return vals, true
}
