package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var m productModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: get: %w", err)
	}
	return m.toDomain(), nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *CatalogRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("LOWER(category) = ?", strings.ToLower(category)))
}

func (r *CatalogRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	tx := r.db.WithContext(ctx)
	if q != "" {
		like := "%" + escapeLike(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", like, like)
	}
	return r.find(tx)
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&productModel{}).
		Where("category <> ''").
		Distinct().Order("category").Pluck("category", &out).Error
	if err != nil {
		return nil, fmt.Errorf("catalog repository: categories: %w", err)
	}
	return out, nil
}

// SetStock validates through the domain model before writing.
func (r *CatalogRepository) SetStock(ctx context.Context, id string, stock int) (int, error) {
	var stored int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m productModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		p := m.toDomain()
		if err := p.SetStock(stock); err != nil {
			return err
		}
		stored = p.Stock
		return tx.Model(&productModel{}).Where("id = ?", id).
			Updates(map[string]any{"stock": p.Stock, "updated_at": p.UpdatedAt}).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidStock) {
			return 0, err
		}
		return 0, fmt.Errorf("catalog repository: set stock: %w", err)
	}
	return stored, nil
}

func (r *CatalogRepository) Save(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidID
	}
	m := productFromDomain(p)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "image", "category", "stock", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("catalog repository: save: %w", err)
	}
	return nil
}

func (r *CatalogRepository) find(tx *gorm.DB) ([]*domain.Product, error) {
	var rows []productModel
	if err := tx.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog repository: list: %w", err)
	}
	out := make([]*domain.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
