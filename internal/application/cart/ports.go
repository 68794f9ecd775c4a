package cart

import (
	"context"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

// StockAdjuster writes the new absolute stock level of one product.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID string, stock int) (int, error)
}

// OrderPlacer persists the order record and returns its id.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, draft domorder.Draft) (string, error)
}

// IdempotencyGuard blocks a second submission carrying the same key.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Checkouter runs a checkout for a cart snapshot.
type Checkouter interface {
	Execute(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error)
}
