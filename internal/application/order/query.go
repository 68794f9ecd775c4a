package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ListOrdersUseCase returns the customer's orders, newest first.
type ListOrdersUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

func NewListOrdersUseCase(repo domain.Repository, tel observability.Observability) *ListOrdersUseCase {
	return &ListOrdersUseCase{repo: repo, in: application.NewInstruments(tel, orderService)}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, customerID string) (_ []*domain.Order, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseList, "ListOrders",
		attribute.String("order.customer_id", customerID),
	)
	defer func() { run.End(err) }()

	if customerID == "" {
		run.Fail("CUSTOMER_ID_REQUIRED")
		return nil, ErrCustomerRequired
	}
	orders, err := uc.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		run.Fail("ORDER_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(orders)))
	return orders, nil
}

type GetOrderInput struct {
	CustomerID string
	OrderID    string
}

// GetOrderUseCase loads one order. Orders of other customers read as not found.
type GetOrderUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

func NewGetOrderUseCase(repo domain.Repository, tel observability.Observability) *GetOrderUseCase {
	return &GetOrderUseCase{repo: repo, in: application.NewInstruments(tel, orderService)}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, in GetOrderInput) (_ *domain.Order, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseGet, "GetOrder",
		attribute.String("order.id", in.OrderID),
	)
	defer func() { run.End(err) }()

	o, err := loadOwned(ctx, uc.repo, in.CustomerID, in.OrderID)
	if err != nil {
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, err
	}
	return o, nil
}

func loadOwned(ctx context.Context, repo domain.Repository, customerID, orderID string) (*domain.Order, error) {
	if customerID == "" {
		return nil, ErrCustomerRequired
	}
	o, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if o.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return o, nil
}
