package catalog

import (
	"context"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

type AdjustStockInput struct {
	ProductID string
	Stock     int
}

// AdjustStockUseCase writes an absolute stock level computed by checkout.
type AdjustStockUseCase struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	in        application.Instruments
}

func NewAdjustStockUseCase(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		repo:      repo,
		publisher: publisher,
		in:        application.NewInstruments(tel, catalogService),
	}
}

func (uc *AdjustStockUseCase) Execute(ctx context.Context, in AdjustStockInput) (_ int, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseAdjust, "AdjustStock",
		attribute.String("product.id", in.ProductID),
		attribute.Int("product.stock", in.Stock),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("product_id", in.ProductID))

	if in.Stock < 0 {
		run.Fail("STOCK_INVALID")
		return 0, domain.ErrInvalidStock
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return 0, err
	}

	current, err := uc.repo.Get(ctx, in.ProductID)
	if err != nil {
		run.Fail("PRODUCT_LOOKUP_FAILED")
		return 0, wrapRepositoryError(err)
	}
	stored, err := uc.repo.SetStock(ctx, in.ProductID, in.Stock)
	if err != nil {
		run.Fail("STOCK_UPDATE_FAILED")
		return 0, wrapRepositoryError(err)
	}

	if perr := uc.in.Publish(ctx, uc.publisher, domain.NewStockAdjustedEvent(in.ProductID, current.Stock, stored)); perr != nil {
		run.Status = "EVENT_PUBLISH_FAILED"
		run.With(observability.F("event_publish_error", perr.Error()))
	}
	run.With(
		observability.F("previous", current.Stock),
		observability.F("stock", stored),
	)
	return stored, nil
}

// AdjustStock adapts Execute to the checkout collaborator shape.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, productID string, stock int) (int, error) {
	return uc.Execute(ctx, AdjustStockInput{ProductID: productID, Stock: stock})
}
