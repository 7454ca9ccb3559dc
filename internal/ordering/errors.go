package ordering

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

// Engine errors are caller input errors. None of them is worth retrying.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingSelection  = errors.New("pickup time and payment method are required")
	ErrInvalidPickupTime = errors.New("pickup time is not an active option")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrItemUnavailable   = errors.New("menu item is unavailable")
	ErrNoPickupOptions   = errors.New("at least one pickup time option is required")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.Role
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move order from %s to %s", ErrInvalidTransition, e.Actor, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// QuantityError names the cart line carrying a non-positive quantity.
type QuantityError struct {
	MenuItemID string
	Quantity   int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("%s: item %s has quantity %d", ErrInvalidQuantity, e.MenuItemID, e.Quantity)
}

func (e *QuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// UnavailableError names the menu item that cannot be ordered.
type UnavailableError struct {
	MenuItemID string
	Name       string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrItemUnavailable, e.Name)
}

func (e *UnavailableError) Unwrap() error {
	return ErrItemUnavailable
}
