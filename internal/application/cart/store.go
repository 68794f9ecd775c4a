package cart

import (
	"context"
	"sync"
	"time"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domorder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

const (
	mutationRejected = "rejected"
	mutationApplied  = "applied"
	opCheckout       = "checkout"
)

// Store holds the cart of one shopping session. Every operation runs under
// a single mutex; while a checkout is in flight mutations and a second
// checkout are refused with ErrCheckoutInProgress. Reads stay available.
type Store struct {
	mu         sync.Mutex
	customerID string
	state      domcart.Cart
	processing bool
	touched    time.Time

	checkout  Checkouter
	mutations observability.Counter // cart_mutations_total{operation,outcome}
	now       func() time.Time
}

func NewStore(customerID string, checkout Checkouter, mutations observability.Counter) *Store {
	if mutations == nil {
		mutations = observability.NopCounter()
	}
	s := &Store{
		customerID: customerID,
		state:      domcart.Empty(),
		checkout:   checkout,
		mutations:  mutations,
		now:        time.Now,
	}
	s.touched = s.now()
	return s
}

func (s *Store) CustomerID() string { return s.customerID }

// AddItem adds quantity units of p. A negative quantity takes units away.
func (s *Store) AddItem(p domcart.Product, quantity int) (domcart.Cart, error) {
	return s.apply(domcart.AddItem{Product: p, Quantity: quantity})
}

func (s *Store) RemoveItem(productID string) (domcart.Cart, error) {
	return s.apply(domcart.RemoveItem{ProductID: productID})
}

func (s *Store) UpdateQuantity(productID string, quantity int) (domcart.Cart, error) {
	return s.apply(domcart.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

// SetQuantity is UpdateQuantity bounded by the line's stock ceiling. The check
// and the update happen under the same lock.
func (s *Store) SetQuantity(productID string, quantity int) (domcart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(domcart.UpdateQuantity{ProductID: productID, Quantity: quantity}, func(c domcart.Cart) error {
		if line, ok := c.Line(productID); ok && quantity > line.StockCeiling {
			return ErrQuantityAboveStock
		}
		return nil
	})
}

func (s *Store) Clear() (domcart.Cart, error) {
	return s.apply(domcart.ClearCart{})
}

func (s *Store) IsInCart(productID string) bool {
	return s.Snapshot().Contains(productID)
}

func (s *Store) ItemQuantity(productID string) int {
	return s.Snapshot().Quantity(productID)
}

func (s *Store) Snapshot() domcart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

func (s *Store) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// touch marks the store as in use without changing the cart.
func (s *Store) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
}

func (s *Store) apply(a domcart.Action) (domcart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(a, nil)
}

// applyLocked runs a under s.mu. A non-nil check can veto the action after
// the checkout gate.
func (s *Store) applyLocked(a domcart.Action, check func(domcart.Cart) error) (domcart.Cart, error) {
	if s.processing {
		s.count(a.Name(), mutationRejected)
		return s.state, ErrCheckoutInProgress
	}
	if check != nil {
		if err := check(s.state); err != nil {
			s.count(a.Name(), mutationRejected)
			return s.state, err
		}
	}
	s.state = domcart.Reduce(s.state, a)
	s.touched = s.now()
	s.count(a.Name(), mutationApplied)
	return s.state, nil
}

// ProcessCheckout hands the current cart to the checkout use case and clears
// it only when the result reports success.
func (s *Store) ProcessCheckout(ctx context.Context, shipping domorder.ShippingInfo, idempotencyKey string) (res *CheckoutResult, err error) {
	s.mu.Lock()
	if s.processing {
		s.count(opCheckout, mutationRejected)
		s.mu.Unlock()
		return &CheckoutResult{Message: MessageFailure}, ErrCheckoutInProgress
	}
	s.processing = true
	snapshot := s.state
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.processing = false
		s.touched = s.now()
		if err == nil && res != nil && res.Success {
			s.state = domcart.Reduce(s.state, domcart.ClearCart{})
			s.count(opCheckout, mutationApplied)
			return
		}
		s.count(opCheckout, "failed")
	}()

	return s.checkout.Execute(ctx, CheckoutCommand{
		CustomerID:     s.customerID,
		Cart:           snapshot,
		Shipping:       shipping,
		IdempotencyKey: idempotencyKey,
	})
}

func (s *Store) count(operation, outcome string) {
	s.mutations.Add(1,
		observability.L("operation", operation),
		observability.L("outcome", outcome),
	)
}
