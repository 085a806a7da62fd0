package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ecompipe/pkg/records"
)

// nullKey groups rows whose key is null. KeyString never yields it for a
// non-null value because it rejects empty strings.
const nullKey = ""

// groups maps keys to slots in first-seen order.
type groups struct {
	slots map[string]int
}

func newGroups() *groups {
	return &groups{slots: make(map[string]int)}
}

// slot returns the slot for key and whether the key was new.
func (g *groups) slot(key string) (int, bool) {
	if i, ok := g.slots[key]; ok {
		return i, false
	}
	i := len(g.slots)
	g.slots[key] = i
	return i, true
}

func keyOf(v any) string {
	k, ok := records.KeyString(v)
	if !ok {
		return nullKey
	}
	return k
}

func salesByCategory(rows []UnifiedRow) ([]CategorySales, decimal.Decimal) {
	g := newGroups()
	var out []CategorySales
	grand := decimal.Zero
	for _, r := range rows {
		k := keyOf(r.Category)
		i, fresh := g.slot(k)
		if fresh {
			out = append(out, CategorySales{Category: k, Missing: k == nullKey, SalesTotal: decimal.Zero})
		}
		rev := r.Revenue()
		out[i].SalesTotal = out[i].SalesTotal.Add(rev)
		grand = grand.Add(rev)
	}
	return out, grand
}

func topProducts(rows []UnifiedRow) []ProductSales {
	type acc struct {
		ProductSales
		priceSum decimal.Decimal
		priced   int64
	}
	g := newGroups()
	var accs []*acc
	for _, r := range rows {
		i, fresh := g.slot(keyOf(r.ProductID))
		if fresh {
			accs = append(accs, &acc{ProductSales: ProductSales{ProductID: r.ProductID}})
		}
		a := accs[i]
		if a.Title == nil && r.Title != nil {
			a.Title = r.Title
		}
		a.Quantity += r.Quantity
		if r.Price.Valid {
			a.priceSum = a.priceSum.Add(r.Price.Decimal)
			a.priced++
		}
	}

	out := make([]ProductSales, len(accs))
	for i, a := range accs {
		out[i] = a.ProductSales
		if a.priced > 0 {
			out[i].MeanPrice = decimal.NullDecimal{Decimal: a.priceSum.Div(decimal.NewFromInt(a.priced)), Valid: true}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out
}

func profitability(rows []UnifiedRow) []ProductProfit {
	g := newGroups()
	var out []ProductProfit
	for _, r := range rows {
		i, fresh := g.slot(keyOf(r.ProductID))
		if fresh {
			out = append(out, ProductProfit{ProductID: r.ProductID, ProfitEst: decimal.Zero})
		}
		if out[i].Title == nil && r.Title != nil {
			out[i].Title = r.Title
		}
		out[i].ProfitEst = out[i].ProfitEst.Add(r.Profit())
	}
	return out
}

func criticalStock(rows []UnifiedRow) []CriticalStock {
	g := newGroups()
	var out []CriticalStock
	for _, r := range rows {
		if !r.IsCriticalStock {
			continue
		}
		if _, fresh := g.slot(keyOf(r.ProductID)); !fresh {
			continue
		}
		out = append(out, CriticalStock{ProductID: r.ProductID, CurrentStock: r.CurrentStock, MinStock: r.MinStock})
	}
	return out
}
