package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	m := orderFromDomain(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("order repository: insert: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, customerID, key string) (*domain.Order, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return r.first(r.db.WithContext(ctx).Where("customer_id = ? AND idempotency_key = ?", customerID, key))
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	var rows []orderModel
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("order repository: list: %w", err)
	}
	out := make([]*domain.Order, 0, len(rows))
	for _, m := range rows {
		o, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Update persists status and timestamps. Lines are immutable once placed.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	res := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("order repository: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) first(tx *gorm.DB) (*domain.Order, error) {
	var m orderModel
	err := tx.Preload("Lines", orderLines).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: find: %w", err)
	}
	return m.toDomain()
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
