package cart

// Reduce applies a to c and returns the new state. c is never modified.
func Reduce(c Cart, a Action) Cart {
	switch a := a.(type) {
	case AddItem:
		return c.add(a.Product, a.Quantity)
	case RemoveItem:
		return c.remove(a.ProductID)
	case UpdateQuantity:
		return c.update(a.ProductID, a.Quantity)
	case ClearCart:
		return Empty()
	default:
		return c
	}
}

func (c Cart) add(p Product, quantity int) Cart {
	i := c.indexOf(p.ID)
	if i < 0 {
		q := min(quantity, p.Stock)
		if q <= 0 {
			return c
		}
		lines := append(c.Lines(), newLine(p, q))
		return fromLines(lines)
	}

	existing := c.lines[i]
	q := min(existing.Quantity+quantity, existing.StockCeiling)
	if q <= 0 {
		return c.remove(p.ID)
	}
	lines := c.Lines()
	lines[i].Quantity = q
	return fromLines(lines)
}

func (c Cart) remove(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	lines := make([]Line, 0, len(c.lines)-1)
	lines = append(lines, c.lines[:i]...)
	lines = append(lines, c.lines[i+1:]...)
	return fromLines(lines)
}

// update does not clamp to the stock ceiling; callers gate the upper bound.
func (c Cart) update(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.remove(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	lines := c.Lines()
	lines[i].Quantity = quantity
	return fromLines(lines)
}
