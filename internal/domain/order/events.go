package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is emitted once checkout has persisted a new order.
type OrderPlacedEvent struct {
	OrderID    string
	CustomerID string
	Items      int
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Items:      o.ItemCount(),
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted on every lifecycle transition after placement.
type OrderStatusChangedEvent struct {
	OrderID    string
	From       Status
	To         Status
	OccurredAt time.Time
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func NewOrderStatusChangedEvent(o *Order, from Status) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    o.ID,
		From:       from,
		To:         o.Status,
		OccurredAt: time.Now().UTC(),
	}
}
