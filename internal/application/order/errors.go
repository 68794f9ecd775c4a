package order

import (
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
)

var (
	ErrConflict         = domain.ErrConflict
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidState     = domain.ErrInvalidStateTransition
	ErrCustomerRequired = errors.New("order: customer id is required")
	ErrRepository       = errors.New("order: repository failure")
)

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
