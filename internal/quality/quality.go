// Package quality runs the data-quality checks over the unified table.
//
// Checks are read-only and independent. A missing column is a failed check
// with its own marker, never a panic and never a silent pass.
package quality

import (
	"fmt"

	"ecompipe/internal/coerce"
	"ecompipe/pkg/records"
)

// Check names, in the order Run reports them.
const (
	NoNegativePrices     = "no_negative_prices"
	StockIntegerPositive = "stock_integer_positive"
	CategoriesExist      = "categories_exist"
	SaleDatesValid       = "sale_dates_valid"
)

// DefaultDateColumn is the sale-date column checked when Params leaves it empty.
const DefaultDateColumn = "sale_date"

// Result is the outcome of one check.
type Result struct {
	Passed     bool   `json:"passed"`
	Diagnostic string `json:"diagnostic"`
}

func counted(marker string, bad int) Result {
	return Result{Passed: bad == 0, Diagnostic: fmt.Sprintf("%s=%d", marker, bad)}
}

func missing(marker string) Result {
	return Result{Passed: false, Diagnostic: marker}
}

// CheckNoNegativePrices fails for any price below zero. Null prices are not
// violations.
func CheckNoNegativePrices(t records.Table) Result {
	if !t.Has("price") {
		return missing("missing_price_column")
	}
	bad := 0
	for _, r := range t.Rows {
		if d, ok := coerce.Decimal(r["price"]); ok && d.IsNegative() {
			bad++
		}
	}
	return counted("negative_prices_count", bad)
}

// CheckStockIntegerNonNegative fails for any current_stock that is not a
// non-negative whole number. Null and non-numeric values are violations.
func CheckStockIntegerNonNegative(t records.Table) Result {
	if !t.Has("current_stock") {
		return missing("missing_current_stock")
	}
	bad := 0
	for _, r := range t.Rows {
		v := r["current_stock"]
		whole, numeric := coerce.IsWhole(v)
		if !numeric || !whole {
			bad++
			continue
		}
		if d, _ := coerce.Decimal(v); d.IsNegative() {
			bad++
		}
	}
	return counted("bad_stock_count", bad)
}

// CheckCategoriesExist fails for any category outside valid. A null category
// is a violation.
func CheckCategoriesExist(t records.Table, valid []string) Result {
	if !t.Has("category") {
		return missing("missing_category")
	}
	set := make(map[string]struct{}, len(valid))
	for _, v := range valid {
		set[v] = struct{}{}
	}
	bad := 0
	for _, r := range t.Rows {
		v := r["category"]
		if records.IsNull(v) {
			bad++
			continue
		}
		if _, ok := set[records.String(v)]; !ok {
			bad++
		}
	}
	return counted("unknown_categories_count", bad)
}

// CheckSaleDatesValid fails for any non-null value of dateCol that does not
// parse under layouts (coerce.DefaultDateLayouts when none are given).
func CheckSaleDatesValid(t records.Table, dateCol string, layouts ...string) Result {
	if dateCol == "" {
		dateCol = DefaultDateColumn
	}
	if !t.Has(dateCol) {
		return missing("missing_date")
	}
	bad := 0
	for _, r := range t.Rows {
		v := r[dateCol]
		if records.IsNull(v) {
			continue
		}
		if _, ok := coerce.Date(v, layouts...); !ok {
			bad++
		}
	}
	return counted("invalid_dates_count", bad)
}

// Params carries the externally supplied inputs of the gate.
type Params struct {
	ValidCategories []string
	DateColumn      string
	// DateLayouts replaces coerce.DefaultDateLayouts when non-empty.
	DateLayouts []string
}

// Check is one named result within a Report.
type Check struct {
	Name string `json:"name"`
	Result
}

// Report aggregates every check of one run.
type Report struct {
	Checks []Check `json:"checks"`
}

// Run executes all checks; a failing check never stops the others.
func Run(t records.Table, p Params) Report {
	return Report{Checks: []Check{
		{Name: NoNegativePrices, Result: CheckNoNegativePrices(t)},
		{Name: StockIntegerPositive, Result: CheckStockIntegerNonNegative(t)},
		{Name: CategoriesExist, Result: CheckCategoriesExist(t, p.ValidCategories)},
		{Name: SaleDatesValid, Result: CheckSaleDatesValid(t, p.DateColumn, p.DateLayouts...)},
	}}
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the names of failing checks.
func (r Report) Failed() []string {
	var out []string
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c.Name)
		}
	}
	return out
}

// Map returns check name → result.
func (r Report) Map() map[string]Result {
	m := make(map[string]Result, len(r.Checks))
	for _, c := range r.Checks {
		m[c.Name] = c.Result
	}
	return m
}

// DistinctCategories returns the distinct non-null categories of t in
// first-seen order. It is the fallback valid set when none is configured;
// checking a table against its own categories only catches nulls.
func DistinctCategories(t records.Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Rows {
		v := r["category"]
		if records.IsNull(v) {
			continue
		}
		s := records.String(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
