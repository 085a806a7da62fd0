package storage

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SQLValue converts an in-memory cell into a value every supported driver
// accepts. JSON numbers become int64 or float64, decimals become float64 and
// everything else passes through unchanged.
func SQLValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case decimal.Decimal:
		return t.InexactFloat64()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
