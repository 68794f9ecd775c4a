package order

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	workerpresentation "github.com/Zhima-Mochi/minishop-cart/internal/presentation/worker"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService   = "order-worker"
	useCaseOnPlaced = "order.worker.placed"
)

// Worker moves freshly placed orders into processing.
type Worker struct {
	repo       domain.Repository
	subscriber domoutbox.Subscriber
	publisher  domoutbox.Publisher
	in         application.Instruments
}

func NewWorker(
	repo domain.Repository,
	subscriber domoutbox.Subscriber,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Worker {
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		publisher:  publisher,
		in:         application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.repo == nil {
		return
	}
	w.subscriber.Subscribe(domain.OrderPlacedEvent{}.EventName(),
		workerpresentation.Observe(w.in.Logger(), w.handlePlaced))
}

func (w *Worker) handlePlaced(ctx context.Context, e domoutbox.Event) (err error) {
	evt, ok := e.(domain.OrderPlacedEvent)
	if !ok {
		w.in.Count(useCaseOnPlaced, application.OutcomeIgnored)
		return nil
	}

	ctx, run := w.in.Begin(ctx, useCaseOnPlaced, "OrderPlaced",
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("order_id", evt.OrderID))

	order, err := w.repo.FindByID(ctx, evt.OrderID)
	if err != nil {
		run.Fail("ORDER_LOAD_FAILED")
		return fmt.Errorf("worker: load order: %w", err)
	}

	from := order.Status
	if err := order.StartProcessing(); err != nil {
		// Cancelled before the worker got to it.
		if from == domain.StatusCancelled {
			run.Outcome, run.Status = application.OutcomeIgnored, "ORDER_CANCELLED"
			return nil
		}
		run.Fail("STATE_TRANSITION_FAILED")
		return fmt.Errorf("worker: start processing: %w", err)
	}
	if from == order.Status {
		run.Status = "UNCHANGED"
		return nil
	}

	if err := w.repo.Update(ctx, order); err != nil {
		run.Fail("ORDER_UPDATE_FAILED")
		return fmt.Errorf("worker: update order: %w", err)
	}

	if perr := w.in.Publish(ctx, w.publisher, domain.NewOrderStatusChangedEvent(order, from)); perr != nil {
		run.Span().RecordError(perr)
		run.Status = "EVENT_PUBLISH_FAILED"
		run.Log.Warn("event_publish_failed",
			observability.F("event", "order.status_changed"),
			observability.F("order_id", order.ID),
			observability.F("error", perr.Error()),
		)
	}
	return nil
}
