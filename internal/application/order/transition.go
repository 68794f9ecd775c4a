package order

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

type TransitionInput struct {
	CustomerID string
	OrderID    string
}

type transitionUseCase struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	in        application.Instruments

	useCase  string
	spanName string
	apply    func(*domain.Order) error
}

func (uc *transitionUseCase) Execute(ctx context.Context, in TransitionInput) (_ *domain.Order, err error) {
	ctx, run := uc.in.Begin(ctx, uc.useCase, uc.spanName,
		attribute.String("order.id", in.OrderID),
	)
	defer func() { run.End(err) }()

	o, err := loadOwned(ctx, uc.repo, in.CustomerID, in.OrderID)
	if err != nil {
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, err
	}
	from := o.Status
	if err := uc.apply(o); err != nil {
		run.Fail("STATE_TRANSITION_FAILED")
		run.With(observability.F("from", string(from)))
		return nil, fmt.Errorf("order: %s: %w", uc.useCase, err)
	}
	if from == o.Status {
		run.Status = "UNCHANGED"
		return o, nil
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, wrapRepositoryError(err)
	}
	if perr := uc.in.Publish(ctx, uc.publisher, domain.NewOrderStatusChangedEvent(o, from)); perr != nil {
		run.Status = "EVENT_PUBLISH_FAILED"
		run.With(observability.F("event_publish_error", perr.Error()))
	}
	run.With(
		observability.F("from", string(from)),
		observability.F("to", string(o.Status)),
	)
	return o, nil
}

// CancelOrderUseCase cancels an order that has not shipped yet.
type CancelOrderUseCase struct{ transitionUseCase }

func NewCancelOrderUseCase(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *CancelOrderUseCase {
	return &CancelOrderUseCase{transitionUseCase{
		repo:      repo,
		publisher: publisher,
		in:        application.NewInstruments(tel, orderService),
		useCase:   useCaseCancel,
		spanName:  "CancelOrder",
		apply:     (*domain.Order).Cancel,
	}}
}

// ConfirmDeliveryUseCase marks a shipped order as received by the customer.
type ConfirmDeliveryUseCase struct{ transitionUseCase }

func NewConfirmDeliveryUseCase(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *ConfirmDeliveryUseCase {
	return &ConfirmDeliveryUseCase{transitionUseCase{
		repo:      repo,
		publisher: publisher,
		in:        application.NewInstruments(tel, orderService),
		useCase:   useCaseDeliver,
		spanName:  "ConfirmDelivery",
		apply:     (*domain.Order).Deliver,
	}}
}
