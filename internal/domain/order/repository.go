package order

import "context"

type Repository interface {
	// Insert returns ErrConflict when the customer already used the idempotency key.
	Insert(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByIdempotency(ctx context.Context, customerID, key string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	Update(ctx context.Context, order *Order) error
}
