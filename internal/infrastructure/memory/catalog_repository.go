package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
)

var errProductIDRequired = errors.New("catalog repository: id is required")

// CatalogRepository lists products in the order they were first saved.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
}

func NewCatalogRepository(seed ...*domain.Product) *CatalogRepository {
	r := &CatalogRepository{
		products: make(map[string]*domain.Product, len(seed)),
	}
	for _, p := range seed {
		_ = r.Save(context.Background(), p)
	}
	return r
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, func(*domain.Product) bool { return true }), nil
}

func (r *CatalogRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.filter(ctx, func(p *domain.Product) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

func (r *CatalogRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	return r.filter(ctx, func(p *domain.Product) bool { return p.Matches(query) }), nil
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	_ = ctx

	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, p := range r.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *CatalogRepository) SetStock(ctx context.Context, id string, stock int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if err := p.SetStock(stock); err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (r *CatalogRepository) Save(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return errProductIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *CatalogRepository) filter(ctx context.Context, keep func(*domain.Product) bool) []*domain.Product {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.products[id]; keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}
