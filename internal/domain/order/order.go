package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrEmpty                  = errors.New("order: at least one line is required")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount          = errors.New("order: amount must be zero or greater")
	ErrMissingAddress         = errors.New("order: shipping address is required")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
	ErrConflict               = errors.New("order: idempotency key already used")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ShippingInfo is the delivery metadata collected at checkout.
type ShippingInfo struct {
	Address string `json:"address" validate:"notblank,max=500"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone,max=40"`
	Notes   string `json:"notes,omitempty" validate:"max=1000"`
}

// Line is a purchased product frozen at checkout time.
type Line struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID             string
	CustomerID     string
	Lines          []Line
	Total          decimal.Decimal
	Shipping       ShippingInfo
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	state OrderState
}

func New(id, customerID string, lines []Line, shipping ShippingInfo) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmpty
	}
	if strings.TrimSpace(shipping.Address) == "" {
		return nil, ErrMissingAddress
	}
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.Price.IsNegative() {
			return nil, ErrInvalidAmount
		}
		total = total.Add(l.Subtotal())
	}

	now := time.Now().UTC()
	o := &Order{
		ID:         id,
		CustomerID: customerID,
		Lines:      append([]Line(nil), lines...),
		Total:      total,
		Shipping:   shipping,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.setState(pendingState{})
	return o, nil
}

// Restore rebuilds an order loaded from storage.
func Restore(o *Order) (*Order, error) {
	st, err := stateFor(o.Status)
	if err != nil {
		return nil, err
	}
	o.state = st
	return o, nil
}

func (o *Order) StartProcessing() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.StartProcessing(o) })
}

func (o *Order) Ship() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.Ship(o) })
}

// Deliver records that the customer received the order.
func (o *Order) Deliver() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.Deliver(o) })
}

func (o *Order) Cancel() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.Cancel(o) })
}

func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	return &cp
}

func (o *Order) transition(fn func(OrderState) (OrderState, error)) error {
	cur := o.state
	if cur == nil {
		st, err := stateFor(o.Status)
		if err != nil {
			return err
		}
		cur = st
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	o.setState(next)
	o.touch()
	return nil
}

func (o *Order) setState(s OrderState) {
	o.state = s
	o.Status = s.Status()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Draft is what checkout hands over to place an order.
type Draft struct {
	CustomerID     string
	Lines          []Line
	Shipping       ShippingInfo
	IdempotencyKey string
}
