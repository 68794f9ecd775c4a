package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService    = "catalog-service"
	useCaseGet        = "catalog.get"
	useCaseList       = "catalog.list"
	useCaseCategories = "catalog.categories"
	useCaseAdjust     = "catalog.adjust_stock"
)

var (
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = errors.New("catalog: repository failure")
)

func wrapRepositoryError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

// GetProductUseCase loads a single product record.
type GetProductUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

func NewGetProductUseCase(repo domain.Repository, tel observability.Observability) *GetProductUseCase {
	return &GetProductUseCase{repo: repo, in: application.NewInstruments(tel, catalogService)}
}

func (uc *GetProductUseCase) Execute(ctx context.Context, productID string) (_ *domain.Product, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseGet, "GetProduct",
		attribute.String("product.id", productID),
	)
	defer func() { run.End(err) }()

	p, err := uc.repo.Get(ctx, productID)
	if err != nil {
		run.Fail("PRODUCT_LOOKUP_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return p, nil
}

// ListProductsInput narrows the listing. With both set, search results are
// filtered by category.
type ListProductsInput struct {
	Category string
	Query    string
}

type ListProductsUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

func NewListProductsUseCase(repo domain.Repository, tel observability.Observability) *ListProductsUseCase {
	return &ListProductsUseCase{repo: repo, in: application.NewInstruments(tel, catalogService)}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, in ListProductsInput) (_ []*domain.Product, err error) {
	category := strings.TrimSpace(in.Category)
	query := strings.TrimSpace(in.Query)

	ctx, run := uc.in.Begin(ctx, useCaseList, "ListProducts",
		attribute.String("catalog.category", category),
		attribute.Bool("catalog.search", query != ""),
	)
	defer func() { run.End(err) }()

	var products []*domain.Product
	switch {
	case query != "":
		products, err = uc.repo.Search(ctx, query)
		if err == nil && category != "" {
			products = byCategory(products, category)
		}
	case category != "":
		products, err = uc.repo.ListByCategory(ctx, category)
	default:
		products, err = uc.repo.List(ctx)
	}
	if err != nil {
		run.Fail("PRODUCT_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(products)))
	return products, nil
}

func byCategory(ps []*domain.Product, category string) []*domain.Product {
	out := ps[:0]
	for _, p := range ps {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

type ListCategoriesUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

func NewListCategoriesUseCase(repo domain.Repository, tel observability.Observability) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{repo: repo, in: application.NewInstruments(tel, catalogService)}
}

func (uc *ListCategoriesUseCase) Execute(ctx context.Context, _ struct{}) (_ []string, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseCategories, "ListCategories")
	defer func() { run.End(err) }()

	cats, err := uc.repo.Categories(ctx)
	if err != nil {
		run.Fail("CATEGORY_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return cats, nil
}
