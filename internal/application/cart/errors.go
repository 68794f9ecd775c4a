package cart

import "errors"

var (
	ErrCheckoutInProgress  = errors.New("cart: checkout in progress")
	ErrEmptyCart           = errors.New("cart: cart is empty")
	ErrQuantityAboveStock  = errors.New("cart: quantity exceeds available stock")
	ErrInvalidShipping     = errors.New("cart: invalid shipping info")
	ErrDuplicateSubmission = errors.New("cart: checkout already submitted")
	ErrStockUpdate         = errors.New("cart: stock update failed")
	ErrOrderPlacement      = errors.New("cart: order placement failed")
)
