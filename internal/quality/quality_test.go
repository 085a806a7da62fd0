package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecompipe/pkg/records"
)

func sample() records.Table {
	return records.NewTable("unified", []string{"product_id", "price", "category", "current_stock", "sale_date"}, []records.Record{
		{"product_id": 1, "price": 10.0, "category": "A", "current_stock": int64(5), "sale_date": "2023-01-01"},
		{"product_id": 2, "price": 20.0, "category": "B", "current_stock": int64(0), "sale_date": "2023-02-01"},
	})
}

func TestSampleTablePassesEveryCheck(t *testing.T) {
	rep := Run(sample(), Params{ValidCategories: []string{"A", "B", "C"}})
	assert.True(t, rep.Passed(), "%+v", rep)
	assert.Empty(t, rep.Failed())
	assert.Equal(t, Result{Passed: true, Diagnostic: "negative_prices_count=0"}, rep.Map()[NoNegativePrices])
}

func TestMissingPriceColumn(t *testing.T) {
	tbl := records.NewTable("unified", []string{"product_id"}, []records.Record{{"product_id": 1}})
	assert.Equal(t, Result{Passed: false, Diagnostic: "missing_price_column"}, CheckNoNegativePrices(tbl))
}

func TestNegativePrices(t *testing.T) {
	tbl := sample()
	tbl.Rows = append(tbl.Rows,
		records.Record{"price": -1.0},
		records.Record{"price": "-0.5"},
		records.Record{"price": nil},
	)
	assert.Equal(t, Result{Passed: false, Diagnostic: "negative_prices_count=2"}, CheckNoNegativePrices(tbl))
}

func TestStockCheck(t *testing.T) {
	tbl := records.NewTable("unified", []string{"current_stock"}, []records.Record{
		{"current_stock": int64(3)},
		{"current_stock": "4"},
		{"current_stock": 2.5},
		{"current_stock": -1},
		{"current_stock": "many"},
		{"current_stock": nil},
	})
	assert.Equal(t, Result{Passed: false, Diagnostic: "bad_stock_count=4"}, CheckStockIntegerNonNegative(tbl))

	noCol := records.NewTable("unified", []string{"min_stock"}, nil)
	assert.Equal(t, Result{Passed: false, Diagnostic: "missing_current_stock"}, CheckStockIntegerNonNegative(noCol))
}

func TestCategoriesExist(t *testing.T) {
	tbl := sample()
	tbl.Rows = append(tbl.Rows, records.Record{"category": "Z"}, records.Record{"category": nil})

	assert.Equal(t, Result{Passed: false, Diagnostic: "unknown_categories_count=2"}, CheckCategoriesExist(tbl, []string{"A", "B"}))

	noCol := records.NewTable("unified", []string{"product_id"}, nil)
	assert.Equal(t, Result{Passed: false, Diagnostic: "missing_category"}, CheckCategoriesExist(noCol, []string{"A"}))
}

func TestSaleDatesValid(t *testing.T) {
	tbl := sample()
	tbl.Rows = append(tbl.Rows, records.Record{"sale_date": "not-a-date"})
	assert.Equal(t, Result{Passed: false, Diagnostic: "invalid_dates_count=1"}, CheckSaleDatesValid(tbl, "sale_date"))

	ok := records.NewTable("unified", []string{"sale_date"}, []records.Record{
		{"sale_date": nil},
		{"sale_date": ""},
		{"sale_date": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"sale_date": "2024-05-01T12:00:00Z"},
	})
	assert.True(t, CheckSaleDatesValid(ok, "").Passed)

	assert.Equal(t, Result{Passed: false, Diagnostic: "missing_date"}, CheckSaleDatesValid(tbl, "fecha"))
}

func TestSaleDatesCustomLayouts(t *testing.T) {
	tbl := records.NewTable("unified", []string{"fecha"}, []records.Record{{"fecha": "31-12-2024"}})
	assert.False(t, CheckSaleDatesValid(tbl, "fecha").Passed)
	assert.True(t, CheckSaleDatesValid(tbl, "fecha", "02-01-2006").Passed)
}

func TestRunDoesNotShortCircuit(t *testing.T) {
	tbl := records.NewTable("unified", []string{"product_id"}, []records.Record{{"product_id": 1}})
	rep := Run(tbl, Params{})

	require.Len(t, rep.Checks, 4)
	names := make([]string, len(rep.Checks))
	for i, c := range rep.Checks {
		names[i] = c.Name
		assert.False(t, c.Passed)
	}
	assert.Equal(t, []string{NoNegativePrices, StockIntegerPositive, CategoriesExist, SaleDatesValid}, names)
	assert.Equal(t, names, rep.Failed())
	assert.False(t, rep.Passed())
	assert.Equal(t, "missing_date", rep.Map()[SaleDatesValid].Diagnostic)
}

func TestChecksDoNotMutate(t *testing.T) {
	tbl := sample()
	before := tbl.Clone()
	Run(tbl, Params{ValidCategories: []string{"A"}})
	assert.Equal(t, before, tbl)
}

func TestDistinctCategories(t *testing.T) {
	tbl := records.NewTable("u", []string{"category"}, []records.Record{
		{"category": "B"}, {"category": nil}, {"category": "A"}, {"category": "B"},
	})
	assert.Equal(t, []string{"B", "A"}, DistinctCategories(tbl))
}
