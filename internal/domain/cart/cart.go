package cart

import "github.com/shopspring/decimal"

// Cart is an immutable snapshot of the cart state. Totals are recomputed from
// the lines on every transition and cannot be set independently.
type Cart struct {
	lines       []Line
	totalItems  int
	totalAmount decimal.Decimal
}

// Empty returns the initial state.
func Empty() Cart {
	return Cart{totalAmount: decimal.Zero}
}

func fromLines(lines []Line) Cart {
	c := Cart{lines: lines, totalAmount: decimal.Zero}
	for _, l := range lines {
		c.totalItems += l.Quantity
		c.totalAmount = c.totalAmount.Add(l.Subtotal())
	}
	return c
}

// Lines returns the lines in insertion order. The slice is a copy.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) TotalItems() int { return c.totalItems }

func (c Cart) TotalAmount() decimal.Decimal { return c.totalAmount }

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Contains reports whether a line for productID exists.
func (c Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

// Quantity returns the quantity of productID, or 0 when absent.
func (c Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Line returns the line for productID.
func (c Cart) Line(productID string) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
