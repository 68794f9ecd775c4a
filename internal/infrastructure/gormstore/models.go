package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	domcatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

type productModel struct {
	ID          string          `gorm:"primaryKey;size:64"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Image       string          `gorm:"size:1024"`
	Category    string          `gorm:"size:128;index"`
	Stock       int             `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

func (productModel) TableName() string { return "products" }

func (m productModel) toDomain() *domcatalog.Product {
	return &domcatalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Image:       m.Image,
		Category:    m.Category,
		Stock:       m.Stock,
		UpdatedAt:   m.UpdatedAt,
	}
}

func productFromDomain(p *domcatalog.Product) productModel {
	return productModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		UpdatedAt:   p.UpdatedAt,
	}
}

type orderModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	CustomerID string `gorm:"size:128;not null;index;uniqueIndex:idx_orders_customer_key,priority:1"`
	// NULL keys never collide, so orders without a key are not constrained.
	IdempotencyKey  *string          `gorm:"size:128;uniqueIndex:idx_orders_customer_key,priority:2"`
	Total           decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Status          string           `gorm:"size:32;not null;index"`
	ShippingAddress string           `gorm:"size:500;not null"`
	ShippingPhone   string           `gorm:"size:40"`
	ShippingNotes   string           `gorm:"size:1000"`
	Lines           []orderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"index"`
	UpdatedAt       time.Time
}

func (orderModel) TableName() string { return "orders" }

type orderLineModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   string          `gorm:"size:64;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"size:64;not null"`
	Name      string          `gorm:"size:255"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Quantity  int             `gorm:"not null"`
}

func (orderLineModel) TableName() string { return "order_lines" }

func orderFromDomain(o *domorder.Order) orderModel {
	m := orderModel{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Total:           o.Total,
		Status:          string(o.Status),
		ShippingAddress: o.Shipping.Address,
		ShippingPhone:   o.Shipping.Phone,
		ShippingNotes:   o.Shipping.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		m.IdempotencyKey = &key
	}
	for i, l := range o.Lines {
		m.Lines = append(m.Lines, orderLineModel{
			OrderID:   o.ID,
			Position:  i,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return m
}

func (m orderModel) toDomain() (*domorder.Order, error) {
	o := &domorder.Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Total:      m.Total,
		Status:     domorder.Status(m.Status),
		Shipping: domorder.ShippingInfo{
			Address: m.ShippingAddress,
			Phone:   m.ShippingPhone,
			Notes:   m.ShippingNotes,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.IdempotencyKey != nil {
		o.IdempotencyKey = *m.IdempotencyKey
	}
	for _, l := range m.Lines {
		o.Lines = append(o.Lines, domorder.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return domorder.Restore(o)
}
