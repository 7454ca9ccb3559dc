package cart

import (
	"context"
	"time"

	"storefront/internal/models"
)

// Store persists one cart per customer between requests. A missing cart is
// returned as an empty cart, never as an error.
type Store interface {
	Get(ctx context.Context, userID string) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) error
	Delete(ctx context.Context, userID string) error

	// ReserveIdempotency claims key for ttl if nobody holds it. When the key
	// is already taken it returns the order id recorded under it, or "" while
	// the holder is still checking out.
	ReserveIdempotency(ctx context.Context, key string, ttl time.Duration) (orderID string, reserved bool, err error)
	// SetIdempotency records the order placed under a reserved key.
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
	// ReleaseIdempotency drops a reservation whose checkout failed.
	ReleaseIdempotency(ctx context.Context, key string) error
}

// pendingCheckout marks a reserved key that has no order yet.
const pendingCheckout = "pending"

func emptyCart(userID string) models.Cart {
	return models.Cart{UserID: userID, Lines: []models.CartLine{}}
}
