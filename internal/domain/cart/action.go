package cart

// Action is the closed set of cart transitions accepted by Reduce.
type Action interface {
	// Name is the low-cardinality operation label used in logs and metrics.
	Name() string
	isAction()
}

// AddItem adds Quantity units of Product. A negative Quantity is a relative decrement.
type AddItem struct {
	Product  Product
	Quantity int
}

// RemoveItem deletes the line for ProductID.
type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets the quantity of an existing line; values <= 0 remove it.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart empties the cart.
type ClearCart struct{}

func (AddItem) Name() string        { return "add_item" }
func (RemoveItem) Name() string     { return "remove_item" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (ClearCart) Name() string      { return "clear_cart" }

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (ClearCart) isAction()      {}
