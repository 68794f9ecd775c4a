package catalog

import "time"

// StockAdjustedEvent is emitted after checkout writes a new stock level.
type StockAdjustedEvent struct {
	ProductID  string
	Previous   int
	Stock      int
	OccurredAt time.Time
}

func (StockAdjustedEvent) EventName() string { return "catalog.stock_adjusted" }

func NewStockAdjustedEvent(productID string, previous, stock int) StockAdjustedEvent {
	return StockAdjustedEvent{
		ProductID:  productID,
		Previous:   previous,
		Stock:      stock,
		OccurredAt: time.Now().UTC(),
	}
}
