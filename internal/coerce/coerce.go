// Package coerce turns loosely typed cell values into strict numbers and
// dates with a defined fallback for every failure.
package coerce

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecompipe/pkg/records"
)

// DefaultDateLayouts are tried in order by Date.
var DefaultDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006-01-02 15:04:05Z07:00",
	"01/02/2006",
	"02/01/2006",
	"02.01.2006",
}

// Decimal parses v as a decimal number. ok is false for null values and for
// anything that is not a finite number.
func Decimal(v any) (d decimal.Decimal, ok bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case uint32:
		return decimal.NewFromInt(int64(t)), true
	}
	return decimal.Zero, false
}

// maxWholeExponent is the largest exponent a nonzero value can carry and
// still fit in an int64 (10^19 does not).
const maxWholeExponent = 18

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Int parses v and truncates any fraction toward zero. ok is false when v is
// not numeric or its integer part does not fit in an int64.
func Int(v any) (n int64, ok bool) {
	d, ok := Decimal(v)
	if !ok {
		return 0, false
	}
	n, _, ok = Whole(d)
	return n, ok
}

// Whole returns the integer part of d and whether a fraction was dropped.
// ok is false when the integer part is outside the int64 range. Exponents
// are checked before any rescaling, so inputs like "1e50000000" return
// immediately.
func Whole(d decimal.Decimal) (n int64, fractional, ok bool) {
	exp := d.Exponent()
	switch {
	case d.IsZero():
		return 0, false, true
	case exp > maxWholeExponent:
		return 0, false, false
	case exp < 0 && coefDigits(d) <= int(-exp):
		// |d| < 1
		return 0, true, true
	}
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0, false, false
	}
	return d.IntPart(), !d.Equal(d.Truncate(0)), true
}

// IsWhole reports whether v is numeric with no fractional part. The second
// result is false when v is not numeric at all.
func IsWhole(v any) (whole, numeric bool) {
	d, ok := Decimal(v)
	if !ok {
		return false, false
	}
	exp := d.Exponent()
	if exp >= 0 {
		return true, true
	}
	if coefDigits(d) <= int(-exp) {
		return d.IsZero(), true
	}
	return d.Equal(d.Truncate(0)), true
}

func coefDigits(d decimal.Decimal) int {
	return len(new(big.Int).Abs(d.Coefficient()).String())
}

// Date parses v as a calendar date or timestamp. A time.Time is always valid;
// strings must match one of layouts (DefaultDateLayouts when empty).
func Date(v any, layouts ...string) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if len(layouts) == 0 {
			layouts = DefaultDateLayouts
		}
		for _, l := range layouts {
			if ts, err := time.Parse(l, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// FirstNonNull returns the first non-null value of cols in r, or nil.
func FirstNonNull(r records.Record, cols []string) any {
	for _, c := range cols {
		if v := r[c]; !records.IsNull(v) {
			return v
		}
	}
	return nil
}

// Float converts a decimal back to the float64 written to outputs.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// NullFloat converts a NullDecimal to float64 or nil.
func NullFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return Float(d.Decimal)
}
