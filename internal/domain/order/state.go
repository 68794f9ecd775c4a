package order

import "fmt"

// OrderState implements the state pattern for order lifecycle transitions.
type OrderState interface {
	Status() Status
	StartProcessing(o *Order) (OrderState, error)
	Ship(o *Order) (OrderState, error)
	Deliver(o *Order) (OrderState, error)
	Cancel(o *Order) (OrderState, error)
}

func stateFor(s Status) (OrderState, error) {
	switch s {
	case StatusPending:
		return pendingState{}, nil
	case StatusProcessing:
		return processingState{}, nil
	case StatusShipped:
		return shippedState{}, nil
	case StatusDelivered:
		return deliveredState{}, nil
	case StatusCancelled:
		return cancelledState{}, nil
	}
	return nil, fmt.Errorf("order: unknown status %q", s)
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) StartProcessing(*Order) (OrderState, error) {
	return processingState{}, nil
}

func (pendingState) Ship(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (pendingState) Deliver(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (pendingState) Cancel(*Order) (OrderState, error) {
	return cancelledState{}, nil
}

type processingState struct{}

func (processingState) Status() Status { return StatusProcessing }

// Redelivered "placed" events land here; treat them as a no-op.
func (processingState) StartProcessing(*Order) (OrderState, error) {
	return processingState{}, nil
}

func (processingState) Ship(*Order) (OrderState, error) {
	return shippedState{}, nil
}

func (processingState) Deliver(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (processingState) Cancel(*Order) (OrderState, error) {
	return cancelledState{}, nil
}

type shippedState struct{}

func (shippedState) Status() Status { return StatusShipped }

func (shippedState) StartProcessing(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (shippedState) Ship(*Order) (OrderState, error) {
	return shippedState{}, nil
}

func (shippedState) Deliver(*Order) (OrderState, error) {
	return deliveredState{}, nil
}

func (shippedState) Cancel(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type deliveredState struct{}

func (deliveredState) Status() Status { return StatusDelivered }

func (deliveredState) StartProcessing(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (deliveredState) Ship(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (deliveredState) Deliver(*Order) (OrderState, error) {
	return deliveredState{}, nil
}

func (deliveredState) Cancel(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) StartProcessing(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (cancelledState) Ship(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (cancelledState) Deliver(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (cancelledState) Cancel(*Order) (OrderState, error) {
	return cancelledState{}, nil
}
