package coerce

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecompipe/pkg/records"
)

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"10.50", "10.5", true},
		{" 3 ", "3", true},
		{json.Number("2.25"), "2.25", true},
		{float64(1.5), "1.5", true},
		{7, "7", true},
		{int64(-4), "-4", true},
		{"1e2", "100", true},
		{"abc", "", false},
		{"", "", false},
		{nil, "", false},
		{math.NaN(), "", false},
		{math.Inf(1), "", false},
		{true, "", false},
	}
	for _, tt := range tests {
		d, ok := Decimal(tt.in)
		assert.Equal(t, tt.ok, ok, "Decimal(%#v)", tt.in)
		if ok {
			assert.Equal(t, tt.want, d.String(), "Decimal(%#v)", tt.in)
		}
	}
}

func TestIntTruncates(t *testing.T) {
	n, ok := Int("3.9")
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	n, ok = Int(-2.7)
	require.True(t, ok)
	assert.Equal(t, int64(-2), n)

	_, ok = Int("three")
	assert.False(t, ok)

	_, ok = Int("1e20")
	assert.False(t, ok, "out of int64 range")
}

func TestIsWhole(t *testing.T) {
	w, num := IsWhole("5")
	assert.True(t, w)
	assert.True(t, num)

	w, num = IsWhole(5.5)
	assert.False(t, w)
	assert.True(t, num)

	_, num = IsWhole("x")
	assert.False(t, num)
}

func TestDate(t *testing.T) {
	for _, s := range []string{
		"2024-03-01", "2024-03-01T10:00:00Z", "2024-03-01 10:00:00", "03/01/2024",
		"15/01/2024", "2024-01-15 10:00:00+00:00",
	} {
		_, ok := Date(s)
		assert.True(t, ok, s)
	}
	for _, v := range []any{"not-a-date", "2024-13-45", 20240301, ""} {
		_, ok := Date(v)
		assert.False(t, ok, "%v", v)
	}

	_, ok := Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)

	_, ok = Date("01-03-2024", "02-01-2006")
	assert.True(t, ok)
}

func TestDecimalColumnPicksFirstNonNullCandidate(t *testing.T) {
	tbl := records.NewTable("u", []string{"price_sales", "price_catalog"}, []records.Record{
		{"price_sales": "9", "price_catalog": "10"},
		{"price_sales": nil, "price_catalog": "10"},
		{"price_sales": "", "price_catalog": nil},
		{"price_sales": "oops", "price_catalog": "10"},
	})
	vals, st := DecimalColumn(tbl, "price", "price_sales", "price_catalog")

	require.Len(t, vals, 4)
	assert.Equal(t, "9", vals[0].Decimal.String())
	assert.Equal(t, "10", vals[1].Decimal.String())
	assert.False(t, vals[2].Valid)
	assert.False(t, vals[3].Valid)
	assert.Equal(t, Stats{Nulls: 1, Unparsable: 1}, st)
}

func TestDecimalColumnMissing(t *testing.T) {
	tbl := records.NewTable("u", []string{"quantity"}, []records.Record{{"quantity": 1}})
	vals, st := DecimalColumn(tbl, "price")
	assert.True(t, st.Missing)
	assert.False(t, vals[0].Valid)
}

func TestCountColumnNeverNegative(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		st   Stats
	}{
		{name: "integer", in: "3", want: 3},
		{name: "fraction truncates", in: "2.8", want: 2, st: Stats{Fractional: 1}},
		{name: "negative clamps", in: "-5", st: Stats{Negative: 1}},
		{name: "text", in: "lots", st: Stats{Unparsable: 1}},
		{name: "null", in: nil, st: Stats{Nulls: 1}},
		{name: "max int64", in: "9223372036854775807", want: math.MaxInt64},
		{name: "just past max int64", in: "9223372036854775808", st: Stats{Overflow: 1}},
		{name: "past uint64", in: "18446744073709551617", st: Stats{Overflow: 1}},
		{name: "exponent 19", in: "1e19", st: Stats{Overflow: 1}},
		{name: "exponent 20", in: "1e20", st: Stats{Overflow: 1}},
		{name: "huge negative", in: "-1e20", st: Stats{Negative: 1}},
		{name: "float beyond range", in: 1e300, st: Stats{Overflow: 1}},
		{name: "tiny fraction", in: "1e-40", st: Stats{Fractional: 1}},
		{name: "exponent notation in range", in: "1.5e3", want: 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := records.NewTable("u", []string{"quantity"}, []records.Record{{"quantity": tt.in}})
			vals, st := CountColumn(tbl, "quantity")
			assert.Equal(t, []int64{tt.want}, vals)
			assert.Equal(t, tt.st, st)
		})
	}
}

func TestCountColumnHugeExponentReturnsQuickly(t *testing.T) {
	tbl := records.NewTable("u", []string{"quantity"}, []records.Record{
		{"quantity": "1e50000000"},
		{"quantity": "1e-50000000"},
	})

	done := make(chan struct{})
	var (
		vals []int64
		st   Stats
	)
	go func() {
		defer close(done)
		vals, st = CountColumn(tbl, "quantity")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CountColumn did not return for a huge exponent")
	}
	assert.Equal(t, []int64{0, 0}, vals)
	assert.Equal(t, Stats{Overflow: 1, Fractional: 1}, st)

	w, num := IsWhole("1e-50000000")
	assert.True(t, num)
	assert.False(t, w)
	w, _ = IsWhole("1e50000000")
	assert.True(t, w)
}

func TestWhole(t *testing.T) {
	n, frac, ok := Whole(decimal.RequireFromString("-7.25"))
	assert.Equal(t, int64(-7), n)
	assert.True(t, frac)
	assert.True(t, ok)

	n, frac, ok = Whole(decimal.RequireFromString("0.000"))
	assert.Equal(t, int64(0), n)
	assert.False(t, frac)
	assert.True(t, ok)

	_, _, ok = Whole(decimal.RequireFromString("-9223372036854775809"))
	assert.False(t, ok)
}

func TestCountColumnMissingDefaultsToZero(t *testing.T) {
	tbl := records.NewTable("u", []string{"quantity"}, []records.Record{{"quantity": 1}, {"quantity": 2}})
	vals, st := CountColumn(tbl, "current_stock")
	assert.True(t, st.Missing)
	assert.Equal(t, []int64{0, 0}, vals)
}

func TestStringColumn(t *testing.T) {
	tbl := records.NewTable("u", []string{"title_sales", "title_catalog"}, []records.Record{
		{"title_sales": "mug", "title_catalog": "Mug"},
		{"title_sales": "lamp", "title_catalog": nil},
		{"title_sales": nil, "title_catalog": nil},
	})
	vals, ok := StringColumn(tbl, "title", "title_catalog", "title_sales")
	require.True(t, ok)
	assert.Equal(t, []any{"Mug", "lamp", nil}, vals)

	_, ok = StringColumn(tbl, "category")
	assert.False(t, ok)
}
