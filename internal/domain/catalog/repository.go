package catalog

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)
	Search(ctx context.Context, query string) ([]*Product, error)
	Categories(ctx context.Context) ([]string, error)
	// SetStock writes the new stock level and returns the stored value.
	SetStock(ctx context.Context, id string, stock int) (int, error)
	Save(ctx context.Context, p *Product) error
}
