package enums

// StockStatus classifies a product's current on-hand quantity against its
// alert threshold. Pure classification; rendering belongs to the adapter.
type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusIn  StockStatus = "in_stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// ClassifyStock maps an on-hand quantity and alert threshold to a status.
// The check uses the current quantity, not a hypothetical post-reservation
// one.
func ClassifyStock(stockQty, alertThreshold int) StockStatus {
	switch {
	case stockQty == 0:
		return StockStatusOut
	case stockQty <= alertThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
