// Package records defines the in-memory row and table types shared by every
// stage of the pipeline.
//
// A Record is a loosely typed row keyed by column name. A Table couples an
// ordered column list with its rows so that column order survives joins and
// is reproduced verbatim by the output writers.
package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a single row. A missing key and a nil value both mean "null".
type Record map[string]any

// Clone returns a shallow copy of the record. Values are immutable scalars in
// practice, so copying the map is enough to isolate callers.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a named, ordered set of columns and the rows that carry them.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// NewTable builds a table from columns and rows without copying.
func NewTable(name string, columns []string, rows []Record) Table {
	return Table{Name: name, Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Has reports whether col is one of the table's columns.
func (t Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// Index returns the position of col in Columns or -1.
func (t Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// First returns the first of the candidate columns present in the table.
func (t Table) First(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.Has(c) {
			return c, true
		}
	}
	return "", false
}

// Present filters candidates down to the ones the table has, keeping order.
func (t Table) Present(candidates ...string) []string {
	var out []string
	for _, c := range candidates {
		if t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Clone deep-copies the column slice and every row.
func (t Table) Clone() Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return Table{Name: t.Name, Columns: cols, Rows: rows}
}

// Column returns the values of col in row order; absent cells are nil.
func (t Table) Column(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// SetColumn writes values into col, appending col to Columns when new.
// len(values) must equal t.Len().
func (t *Table) SetColumn(col string, values []any) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("records: column %q has %d values for %d rows", col, len(values), len(t.Rows))
	}
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
	for i, r := range t.Rows {
		r[col] = values[i]
	}
	return nil
}

// Rename returns a copy of t in which column from is called to. Renaming a
// column that does not exist returns an unchanged copy.
func (t Table) Rename(from, to string) Table {
	out := t.Clone()
	idx := out.Index(from)
	if idx < 0 || from == to {
		return out
	}
	out.Columns[idx] = to
	for _, r := range out.Rows {
		if v, ok := r[from]; ok {
			delete(r, from)
			r[to] = v
		}
	}
	return out
}

// Values returns the row as a slice aligned with columns.
func (r Record) Values(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// IsNull reports whether v should be treated as a missing value.
func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	}
	return false
}

// KeyString renders a join/group key in canonical form. Strings are trimmed;
// integral numbers are rendered without a fraction so that a JSON 1 and a CSV
// "1" compare equal. ok is false for null values, which never match.
func KeyString(v any) (key string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		if f, err := t.Float64(); err == nil {
			return KeyString(f)
		}
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
		if !math.IsInf(t, 0) && t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(t), true
	}
}

// String renders a cell for text outputs such as CSV and spreadsheets.
// Nil renders as the empty string.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
