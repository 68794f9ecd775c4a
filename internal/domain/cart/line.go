package cart

import "github.com/shopspring/decimal"

// Product is the catalog view the cart snapshots when a line is created.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Image    string
	Category string
	Stock    int
}

// Line is one row per distinct product. Display fields are copied at creation
// and never refreshed; StockCeiling only bounds increments.
type Line struct {
	ProductID    string
	Name         string
	Price        decimal.Decimal
	Image        string
	Category     string
	StockCeiling int
	Quantity     int
}

func newLine(p Product, quantity int) Line {
	return Line{
		ProductID:    p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Image:        p.Image,
		Category:     p.Category,
		StockCeiling: p.Stock,
		Quantity:     quantity,
	}
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// RemainingStock is the stock left on the catalog side once this line is bought.
func (l Line) RemainingStock() int {
	return max(0, l.StockCeiling-l.Quantity)
}
