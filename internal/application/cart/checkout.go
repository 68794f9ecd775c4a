package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domorder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/pkg/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	cartService     = "cart-service"
	useCaseCheckout = "cart.checkout"

	peerCatalog         = "catalog"
	endpointAdjustStock = "adjust_stock"
	peerOrders          = "orders"
	endpointPlaceOrder  = "place_order"

	MessageSuccess = "Purchase completed successfully!"
	MessageFailure = "Could not process the purchase. Please try again."
)

type CheckoutOptions struct {
	Timeout        time.Duration
	FanOut         int
	IdempotencyTTL time.Duration
}

func (o CheckoutOptions) withDefaults() CheckoutOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.FanOut <= 0 {
		o.FanOut = 4
	}
	if o.IdempotencyTTL <= 0 {
		o.IdempotencyTTL = 24 * time.Hour
	}
	return o
}

type CheckoutCommand struct {
	CustomerID     string
	Cart           domcart.Cart
	Shipping       domorder.ShippingInfo
	IdempotencyKey string
}

// AppliedLine is a stock write that went through, whatever happened after it.
type AppliedLine struct {
	ProductID string
	Stock     int
}

type CheckoutResult struct {
	Success bool
	Message string
	OrderID string
	Applied []AppliedLine
	Failed  []string
}

// ProcessCheckoutUseCase writes the remaining stock of every cart line, then
// records the order. Stock writes are independent: a failure on one line does
// not undo the others.
type ProcessCheckoutUseCase struct {
	stock  StockAdjuster
	orders OrderPlacer
	guard  IdempotencyGuard
	opts   CheckoutOptions
	in     application.Instruments
}

func NewProcessCheckoutUseCase(
	stock StockAdjuster,
	orders OrderPlacer,
	guard IdempotencyGuard,
	opts CheckoutOptions,
	tel observability.Observability,
) *ProcessCheckoutUseCase {
	return &ProcessCheckoutUseCase{
		stock:  stock,
		orders: orders,
		guard:  guard,
		opts:   opts.withDefaults(),
		in:     application.NewInstruments(tel, cartService),
	}
}

// Execute always returns a result carrying the user-facing message, also on error.
func (uc *ProcessCheckoutUseCase) Execute(ctx context.Context, cmd CheckoutCommand) (res *CheckoutResult, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseCheckout, "ProcessCheckout",
		attribute.String("cart.customer_id", cmd.CustomerID),
		attribute.Int("cart.lines", len(cmd.Cart.Lines())),
		attribute.Int("cart.total_items", cmd.Cart.TotalItems()),
	)
	defer func() { run.End(err) }()
	run.With(
		observability.F("total_items", cmd.Cart.TotalItems()),
		observability.F("total_amount", cmd.Cart.TotalAmount().StringFixed(2)),
	)

	res = &CheckoutResult{Message: MessageFailure}

	// An empty cart never reaches the collaborators; there is no order to place.
	if cmd.Cart.IsEmpty() {
		run.Fail("CART_EMPTY")
		return res, ErrEmptyCart
	}
	if verr := validation.Struct(cmd.Shipping); verr != nil {
		run.Fail("SHIPPING_INVALID")
		return res, fmt.Errorf("%w: %w", ErrInvalidShipping, verr)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	if cmd.IdempotencyKey != "" && uc.guard != nil {
		key := cmd.CustomerID + ":" + cmd.IdempotencyKey
		ok, gerr := uc.guard.Acquire(ctx, key, uc.opts.IdempotencyTTL)
		if gerr != nil {
			run.Fail("IDEMPOTENCY_GUARD_FAILED")
			return res, fmt.Errorf("cart: idempotency guard: %w", gerr)
		}
		if !ok {
			run.Fail("DUPLICATE_SUBMISSION")
			return res, ErrDuplicateSubmission
		}
		// A failed attempt frees the key so the customer can retry.
		defer func() {
			if err == nil {
				return
			}
			relCtx, relCancel := context.WithTimeout(context.WithoutCancel(ctx), application.PublishTimeout)
			defer relCancel()
			if rerr := uc.guard.Release(relCtx, key); rerr != nil {
				run.Log.Warn("idempotency_release_failed", observability.F("error", rerr.Error()))
			}
		}()
	}

	lines := cmd.Cart.Lines()
	applied, failed, stockErr := uc.adjustStock(ctx, lines)
	res.Applied, res.Failed = applied, failed

	if stockErr != nil {
		if len(applied) > 0 {
			uc.logPartial(run, applied, failed)
		}
		run.Fail("STOCK_UPDATE_FAILED")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			run.Fail("CHECKOUT_TIMEOUT")
		}
		return res, fmt.Errorf("%w: %w", ErrStockUpdate, stockErr)
	}

	draft := domorder.Draft{
		CustomerID:     cmd.CustomerID,
		Lines:          orderLines(lines),
		Shipping:       cmd.Shipping,
		IdempotencyKey: cmd.IdempotencyKey,
	}
	start := time.Now()
	orderID, perr := uc.orders.PlaceOrder(ctx, draft)
	uc.in.External(peerOrders, endpointPlaceOrder, outcomeOf(perr), start)
	if perr != nil {
		uc.logPartial(run, applied, nil)
		run.Fail("ORDER_PLACE_FAILED")
		return res, fmt.Errorf("%w: %w", ErrOrderPlacement, perr)
	}

	res.Success = true
	res.Message = MessageSuccess
	res.OrderID = orderID
	run.With(observability.F("order_id", orderID))
	run.Span().SetAttributes(attribute.String("order.id", orderID))
	return res, nil
}

// adjustStock writes max(0, ceiling-quantity) for every line concurrently.
// Every line is attempted; errors are aggregated rather than short-circuiting.
func (uc *ProcessCheckoutUseCase) adjustStock(ctx context.Context, lines []domcart.Line) ([]AppliedLine, []string, error) {
	results := make([]*AppliedLine, len(lines))

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(uc.opts.FanOut)

	for i, l := range lines {
		g.Go(func() error {
			start := time.Now()
			stored, aerr := uc.stock.AdjustStock(ctx, l.ProductID, l.RemainingStock())
			uc.in.External(peerCatalog, endpointAdjustStock, outcomeOf(aerr), start)
			if aerr != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("product %s: %w", l.ProductID, aerr))
				mu.Unlock()
				return nil
			}
			results[i] = &AppliedLine{ProductID: l.ProductID, Stock: stored}
			return nil
		})
	}
	_ = g.Wait()

	applied := make([]AppliedLine, 0, len(lines))
	var failed []string
	for i, r := range results {
		if r == nil {
			failed = append(failed, lines[i].ProductID)
			continue
		}
		applied = append(applied, *r)
	}
	return applied, failed, errs
}

func (uc *ProcessCheckoutUseCase) logPartial(run *application.Run, applied []AppliedLine, failed []string) {
	ids := make([]string, 0, len(applied))
	for _, a := range applied {
		ids = append(ids, a.ProductID)
	}
	run.Log.Warn("checkout_partial_stock_update",
		observability.F("applied", ids),
		observability.F("failed", failed),
	)
}

func orderLines(lines []domcart.Line) []domorder.Line {
	out := make([]domorder.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, domorder.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return out
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return application.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return application.OutcomeCanceled
	}
	return application.OutcomeError
}
