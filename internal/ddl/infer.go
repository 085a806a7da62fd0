package ddl

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecompipe/pkg/records"
)

// InferKinds returns one logical kind per column of t, judged from the Go
// types of its non-null values:
//
//   - only integers                 -> KindInt
//   - integers and floats/decimals  -> KindFloat
//   - only bools                    -> KindBool
//   - only time.Time                -> KindTimestamp
//   - anything else, or all null    -> KindText
//
// Strings are never parsed; a CSV column of digits stays text. The second
// return value reports, per column, whether any row holds a null.
func InferKinds(t records.Table) (kinds []string, nullable []bool) {
	kinds = make([]string, len(t.Columns))
	nullable = make([]bool, len(t.Columns))
	for i, c := range t.Columns {
		kind := ""
		for _, r := range t.Rows {
			v := r[c]
			if v == nil {
				nullable[i] = true
				continue
			}
			kind = widen(kind, kindOf(v))
		}
		if kind == "" {
			kind = KindText
			nullable[i] = true
		}
		kinds[i] = kind
	}
	return kinds, nullable
}

func kindOf(v any) string {
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInt
	case float32, float64, decimal.Decimal:
		return KindFloat
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return KindInt
		}
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTimestamp
	default:
		return KindText
	}
}

func widen(have, next string) string {
	switch {
	case have == "" || have == next:
		return next
	case (have == KindInt && next == KindFloat) || (have == KindFloat && next == KindInt):
		return KindFloat
	default:
		return KindText
	}
}

// FromTable derives a TableDef called fqn from t. mapType turns each logical
// kind into the backend's SQL type. Columns holding a null are nullable.
func FromTable(fqn string, t records.Table, mapType func(kind string) string) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table name for %s", t.Name)
	}
	if len(t.Columns) == 0 {
		return TableDef{}, fmt.Errorf("ddl: table %s has no columns", t.Name)
	}
	kinds, nullable := InferKinds(t)
	defs := make([]ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = ColumnDef{
			Name:     c,
			SQLType:  mapType(kinds[i]),
			Nullable: nullable[i],
		}
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}
