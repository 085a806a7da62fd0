// Package analytics derives the business tables from the unified record set:
// per-row coercion, critical-stock flags, category sales, top products,
// estimated profitability and the critical-stock list.
//
// Compute is a pure function of its input. Money is summed in decimal so the
// per-category totals always add up to the grand total.
package analytics

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"ecompipe/internal/coerce"
	"ecompipe/internal/diag"
	"ecompipe/internal/schema"
	"ecompipe/pkg/records"
)

const stage = "analytics"

// Names of the tables returned by Result.Tables.
const (
	TableUnified         = "unified"
	TableSalesByCategory = "sales_by_category"
	TableTopProducts     = "top_products"
	TableProfitability   = "profitability"
	TableCriticalStock   = "critical_stock"
)

// TableNames lists the derived tables in output order.
var TableNames = []string{TableUnified, TableSalesByCategory, TableTopProducts, TableProfitability, TableCriticalStock}

// Options tunes Compute.
type Options struct {
	// CriticalStockThreshold multiplies min_stock; stock strictly below the
	// product is critical.
	CriticalStockThreshold float64
	// CostRatio estimates cost as a fraction of price when no cost is known.
	CostRatio float64
}

// DefaultOptions returns threshold 1.2 and cost ratio 0.6.
func DefaultOptions() Options {
	return Options{CriticalStockThreshold: 1.2, CostRatio: 0.6}
}

func (o Options) validate() error {
	if math.IsNaN(o.CriticalStockThreshold) || math.IsInf(o.CriticalStockThreshold, 0) || o.CriticalStockThreshold < 0 {
		return fmt.Errorf("analytics: critical stock threshold must be a finite non-negative number, got %v", o.CriticalStockThreshold)
	}
	if math.IsNaN(o.CostRatio) || math.IsInf(o.CostRatio, 0) || o.CostRatio < 0 {
		return fmt.Errorf("analytics: cost ratio must be a finite non-negative number, got %v", o.CostRatio)
	}
	return nil
}

// UnifiedRow is the typed view of one coerced unified row.
type UnifiedRow struct {
	ProductID       any
	Title           any
	Category        any
	Price           decimal.NullDecimal
	Quantity        int64
	CurrentStock    int64
	MinStock        int64
	IsCriticalStock bool
	EstimatedCost   decimal.NullDecimal
}

// Revenue is price × quantity, or zero when the price is unknown.
func (r UnifiedRow) Revenue() decimal.Decimal {
	if !r.Price.Valid {
		return decimal.Zero
	}
	return r.Price.Decimal.Mul(decimal.NewFromInt(r.Quantity))
}

// Profit is (price − estimated cost) × quantity, or zero when either is unknown.
func (r UnifiedRow) Profit() decimal.Decimal {
	if !r.Price.Valid || !r.EstimatedCost.Valid {
		return decimal.Zero
	}
	return r.Price.Decimal.Sub(r.EstimatedCost.Decimal).Mul(decimal.NewFromInt(r.Quantity))
}

// CategorySales is one row of sales_by_category.
type CategorySales struct {
	Category   string
	Missing    bool
	SalesTotal decimal.Decimal
}

// ProductSales is one row of top_products.
type ProductSales struct {
	ProductID any
	Title     any
	Quantity  int64
	MeanPrice decimal.NullDecimal
}

// ProductProfit is one row of profitability.
type ProductProfit struct {
	ProductID any
	Title     any
	ProfitEst decimal.Decimal
}

// CriticalStock is one row of critical_stock.
type CriticalStock struct {
	ProductID    any
	CurrentStock int64
	MinStock     int64
}

// Result holds the coerced unified table and every derived table.
type Result struct {
	Unified         records.Table
	Rows            []UnifiedRow
	SalesByCategory []CategorySales
	TopProducts     []ProductSales
	Profitability   []ProductProfit
	CriticalStock   []CriticalStock
	GrandTotal      decimal.Decimal
	Diagnostics     diag.List
}

// Compute coerces unified and derives the summary tables. The input table is
// not modified.
func Compute(unified records.Table, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := schema.RequireColumns(unified.Name, unified.Columns, ColProductID); err != nil {
		return nil, err
	}

	res := &Result{Unified: unified.Clone()}
	rows, err := coerceRows(&res.Unified, opts, &res.Diagnostics)
	if err != nil {
		return nil, err
	}
	res.Rows = rows

	res.SalesByCategory, res.GrandTotal = salesByCategory(rows)
	res.TopProducts = topProducts(rows)
	res.Profitability = profitability(rows)
	res.CriticalStock = criticalStock(rows)
	return res, nil
}

// coerceRows resolves and parses every field, writes the canonical columns
// back into t and returns the typed rows.
func coerceRows(t *records.Table, opts Options, diags *diag.List) ([]UnifiedRow, error) {
	n := t.Len()
	rows := make([]UnifiedRow, n)

	prices, pst := coerce.DecimalColumn(*t, priceColumns...)
	if pst.Missing {
		diags.Add(stage, "missing_price_column", n, "no price, precio or unit_price column")
	} else {
		diags.Add(stage, "null_price", pst.Nulls, "")
		diags.Add(stage, "unparsable_price", pst.Unparsable, "set to null")
	}

	qty, qst := coerce.CountColumn(*t, quantityColumns...)
	addCountDiags(diags, ColQuantity, qst)
	cur, cst := coerce.CountColumn(*t, currentColumns...)
	addCountDiags(diags, ColCurrentStock, cst)
	minimum, mst := coerce.CountColumn(*t, minColumns...)
	addCountDiags(diags, ColMinStock, mst)

	costs, kst := coerce.DecimalColumn(*t, costColumns...)
	if !kst.Missing {
		diags.Add(stage, "unparsable_cost", kst.Unparsable, "estimated from price")
	}

	titles, hasTitle := coerce.StringColumn(*t, titleColumns...)
	categories, hasCategory := coerce.StringColumn(*t, categoryColumns...)

	threshold := decimal.NewFromFloat(opts.CriticalStockThreshold)
	ratio := decimal.NewFromFloat(opts.CostRatio)

	for i, r := range t.Rows {
		row := UnifiedRow{
			ProductID:    r[ColProductID],
			Price:        prices[i],
			Quantity:     qty[i],
			CurrentStock: cur[i],
			MinStock:     minimum[i],
		}
		if hasTitle {
			row.Title = titles[i]
		}
		if hasCategory {
			row.Category = categories[i]
		}
		row.IsCriticalStock = decimal.NewFromInt(row.CurrentStock).LessThan(decimal.NewFromInt(row.MinStock).Mul(threshold))
		switch {
		case costs[i].Valid:
			row.EstimatedCost = costs[i]
		case row.Price.Valid:
			row.EstimatedCost = decimal.NullDecimal{Decimal: row.Price.Decimal.Mul(ratio), Valid: true}
		}
		rows[i] = row
	}

	cols := make(map[string][]any)
	set := func(col string, f func(UnifiedRow) any) {
		vals := make([]any, n)
		for i, r := range rows {
			vals[i] = f(r)
		}
		cols[col] = vals
	}
	if hasTitle {
		cols[ColTitle] = titles
	}
	if hasCategory {
		cols[ColCategory] = categories
	}
	if !pst.Missing {
		set(ColPrice, func(r UnifiedRow) any { return coerce.NullFloat(r.Price) })
	}
	set(ColQuantity, func(r UnifiedRow) any { return r.Quantity })
	set(ColCurrentStock, func(r UnifiedRow) any { return r.CurrentStock })
	set(ColMinStock, func(r UnifiedRow) any { return r.MinStock })
	set(ColIsCriticalStock, func(r UnifiedRow) any { return r.IsCriticalStock })
	set(ColEstimatedCost, func(r UnifiedRow) any { return coerce.NullFloat(r.EstimatedCost) })

	for _, col := range []string{ColTitle, ColCategory, ColPrice, ColQuantity, ColCurrentStock, ColMinStock, ColIsCriticalStock, ColEstimatedCost} {
		vals, ok := cols[col]
		if !ok {
			continue
		}
		if err := t.SetColumn(col, vals); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func addCountDiags(diags *diag.List, col string, st coerce.Stats) {
	if st.Missing {
		diags.Add(stage, "missing_"+col+"_column", 1, "defaulted to 0")
		return
	}
	diags.Add(stage, "unparsable_"+col, st.Unparsable, "defaulted to 0")
	diags.Add(stage, "fractional_"+col, st.Fractional, "truncated")
	diags.Add(stage, "negative_"+col, st.Negative, "clamped to 0")
	diags.Add(stage, "overflow_"+col, st.Overflow, "out of integer range, defaulted to 0")
}
