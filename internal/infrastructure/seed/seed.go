// Package seed loads the initial product catalog from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Products []product `yaml:"products"`
}

type product struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Category    string `yaml:"category"`
	Stock       int    `yaml:"stock"`
}

// Saver is the write side of the catalog repository.
type Saver interface {
	Save(ctx context.Context, p *domain.Product) error
}

// LoadFile reads a catalog file; an empty path selects the bundled catalog.
func LoadFile(path string) ([]*domain.Product, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultCatalog))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) ([]*domain.Product, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Products))
	out := make([]*domain.Product, 0, len(doc.Products))
	for i, row := range doc.Products {
		if _, dup := seen[row.ID]; dup {
			return nil, fmt.Errorf("seed: product %d: duplicate id %q", i, row.ID)
		}
		seen[row.ID] = struct{}{}

		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, fmt.Errorf("seed: product %q: price: %w", row.ID, err)
		}
		p, err := domain.NewProduct(row.ID, row.Name, price, row.Stock)
		if err != nil {
			return nil, fmt.Errorf("seed: product %d: %w", i, err)
		}
		p.Description = row.Description
		p.Image = row.Image
		p.Category = row.Category
		out = append(out, p)
	}
	return out, nil
}

// Apply saves every product, overwriting existing rows with the same id.
func Apply(ctx context.Context, repo Saver, products []*domain.Product) error {
	for _, p := range products {
		if err := repo.Save(ctx, p); err != nil {
			return fmt.Errorf("seed: save %s: %w", p.ID, err)
		}
	}
	return nil
}
