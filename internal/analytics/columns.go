package analytics

// Canonical column names written to the unified table.
const (
	ColProductID       = "product_id"
	ColTitle           = "title"
	ColCategory        = "category"
	ColPrice           = "price"
	ColQuantity        = "quantity"
	ColCurrentStock    = "current_stock"
	ColMinStock        = "min_stock"
	ColIsCriticalStock = "is_critical_stock"
	ColEstimatedCost   = "estimated_cost"
)

// Suffix precedence for columns that a join may have split. The empty suffix
// is the unsplit column.
var (
	saleFirst      = []string{"", "_merged", "_sales", "_catalog", "_inventory"}
	catalogFirst   = []string{"", "_merged", "_catalog", "_sales", "_inventory"}
	inventoryFirst = []string{"", "_inventory", "_merged", "_catalog", "_sales"}
)

var (
	priceColumns    = candidates(saleFirst, "price", "precio", "unit_price")
	quantityColumns = candidates(saleFirst, ColQuantity)
	costColumns     = candidates(catalogFirst, "cost")
	titleColumns    = candidates(catalogFirst, ColTitle)
	categoryColumns = candidates(catalogFirst, ColCategory)
	currentColumns  = candidates(inventoryFirst, ColCurrentStock)
	minColumns      = candidates(inventoryFirst, ColMinStock)
)

// candidates expands every base name under each suffix, suffix-major.
func candidates(suffixes []string, bases ...string) []string {
	out := make([]string, 0, len(suffixes)*len(bases))
	for _, s := range suffixes {
		for _, b := range bases {
			out = append(out, b+s)
		}
	}
	return out
}
