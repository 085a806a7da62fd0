package analytics

import (
	"ecompipe/internal/coerce"
	"ecompipe/pkg/records"
)

// Tables renders the result as the five named tables handed to the output
// writers. The unified table is returned as is; the caller must not modify
// its rows.
func (r *Result) Tables() map[string]records.Table {
	return map[string]records.Table{
		TableUnified:         r.Unified,
		TableSalesByCategory: r.salesByCategoryTable(),
		TableTopProducts:     r.topProductsTable(),
		TableProfitability:   r.profitabilityTable(),
		TableCriticalStock:   r.criticalStockTable(),
	}
}

func (r *Result) salesByCategoryTable() records.Table {
	rows := make([]records.Record, len(r.SalesByCategory))
	for i, c := range r.SalesByCategory {
		var cat any = c.Category
		if c.Missing {
			cat = nil
		}
		rows[i] = records.Record{ColCategory: cat, "sales_total": coerce.Float(c.SalesTotal)}
	}
	return records.NewTable(TableSalesByCategory, []string{ColCategory, "sales_total"}, rows)
}

func (r *Result) topProductsTable() records.Table {
	rows := make([]records.Record, len(r.TopProducts))
	for i, p := range r.TopProducts {
		rows[i] = records.Record{
			ColProductID: p.ProductID,
			ColTitle:     p.Title,
			ColQuantity:  p.Quantity,
			"mean_price": coerce.NullFloat(p.MeanPrice),
		}
	}
	return records.NewTable(TableTopProducts, []string{ColProductID, ColTitle, ColQuantity, "mean_price"}, rows)
}

func (r *Result) profitabilityTable() records.Table {
	rows := make([]records.Record, len(r.Profitability))
	for i, p := range r.Profitability {
		rows[i] = records.Record{ColProductID: p.ProductID, ColTitle: p.Title, "profit_est": coerce.Float(p.ProfitEst)}
	}
	return records.NewTable(TableProfitability, []string{ColProductID, ColTitle, "profit_est"}, rows)
}

func (r *Result) criticalStockTable() records.Table {
	rows := make([]records.Record, len(r.CriticalStock))
	for i, c := range r.CriticalStock {
		rows[i] = records.Record{ColProductID: c.ProductID, ColCurrentStock: c.CurrentStock, ColMinStock: c.MinStock}
	}
	return records.NewTable(TableCriticalStock, []string{ColProductID, ColCurrentStock, ColMinStock}, rows)
}
