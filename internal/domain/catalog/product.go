package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidStock = errors.New("catalog: stock must be zero or greater")
	ErrInvalidPrice = errors.New("catalog: price must be zero or greater")
	ErrInvalidID    = errors.New("catalog: product id is required")
	ErrOutOfStock   = errors.New("catalog: product out of stock")
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
	Stock       int
	UpdatedAt   time.Time
}

func NewProduct(id, name string, price decimal.Decimal, stock int) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// SetStock overwrites the stock level. Checkout computes the new level itself,
// so this is a plain write rather than a decrement.
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	p.Stock = stock
	p.touch()
	return nil
}

func (p *Product) InStock() bool { return p.Stock > 0 }

// Snapshot copies the fields a cart line keeps.
func (p *Product) Snapshot() cart.Product {
	return cart.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Stock:    p.Stock,
	}
}

// Matches reports whether the query occurs in the name or description,
// ignoring case.
func (p *Product) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
