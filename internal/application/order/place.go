package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService   = "order-service"
	useCasePlace   = "order.place"
	useCaseList    = "order.list"
	useCaseGet     = "order.get"
	useCaseCancel  = "order.cancel"
	useCaseDeliver = "order.confirm_delivery"
)

// PlaceOrderUseCase persists the order record produced by a checkout.
type PlaceOrderUseCase struct {
	repo        domain.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	in          application.Instruments
}

func NewPlaceOrderUseCase(
	repo domain.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		repo:        repo,
		idGenerator: idGen,
		publisher:   publisher,
		in:          application.NewInstruments(tel, orderService),
	}
}

type PlaceOrderResult struct {
	OrderID string
	Status  domain.Status
	Replay  bool
}

// Execute inserts the order, or returns the existing one when the customer
// already used the idempotency key.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd domain.Draft) (_ *PlaceOrderResult, err error) {
	ctx, run := uc.in.Begin(ctx, useCasePlace, "PlaceOrder",
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.lines", len(cmd.Lines)),
	)
	defer func() { run.End(err) }()

	if cmd.CustomerID == "" {
		run.Fail("CUSTOMER_ID_REQUIRED")
		return nil, ErrCustomerRequired
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	if cmd.IdempotencyKey != "" {
		existing, repoErr := uc.repo.FindByIdempotency(ctx, cmd.CustomerID, cmd.IdempotencyKey)
		switch {
		case repoErr == nil:
			return uc.replay(run, existing), nil
		case errors.Is(repoErr, domain.ErrNotFound):
		default:
			run.Fail("IDEMPOTENCY_LOOKUP_FAILED")
			return nil, wrapRepositoryError(repoErr)
		}
	}

	entity, derr := domain.New(uc.idGenerator.NewID(), cmd.CustomerID, cmd.Lines, cmd.Shipping)
	if derr != nil {
		run.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("order: construct: %w", derr)
	}
	entity.IdempotencyKey = cmd.IdempotencyKey

	if err := uc.repo.Insert(ctx, entity); err != nil {
		if errors.Is(err, domain.ErrConflict) && cmd.IdempotencyKey != "" {
			if existing, lookupErr := uc.repo.FindByIdempotency(ctx, cmd.CustomerID, cmd.IdempotencyKey); lookupErr == nil {
				return uc.replay(run, existing), nil
			}
		}
		run.Fail("REPO_INSERT_FAILED")
		return nil, wrapRepositoryError(err)
	}

	if perr := uc.in.Publish(ctx, uc.publisher, domain.NewOrderPlacedEvent(entity)); perr != nil {
		run.Status = "EVENT_PUBLISH_FAILED"
		run.With(observability.F("event_publish_error", perr.Error()))
	}

	run.With(observability.F("order_id", entity.ID))
	run.Span().SetAttributes(attribute.String("order.status", string(entity.Status)))
	run.Span().AddEvent("order.placed", trace.WithAttributes(attribute.String("order.id", entity.ID)))

	return &PlaceOrderResult{OrderID: entity.ID, Status: entity.Status}, nil
}

// PlaceOrder adapts Execute to the checkout collaborator shape.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, draft domain.Draft) (string, error) {
	res, err := uc.Execute(ctx, draft)
	if err != nil {
		return "", err
	}
	return res.OrderID, nil
}

func (uc *PlaceOrderUseCase) replay(run *application.Run, existing *domain.Order) *PlaceOrderResult {
	run.Status = "IDEMPOTENT_REPLAY"
	run.With(observability.F("order_id", existing.ID))
	run.Span().SetAttributes(attribute.String("order.status", string(existing.Status)))
	run.Span().AddEvent("order.idempotent_replay",
		trace.WithAttributes(attribute.String("order.id", existing.ID)),
	)
	return &PlaceOrderResult{OrderID: existing.ID, Status: existing.Status, Replay: true}
}
