package store

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// Gateway is the persistence boundary of the storefront. Implementations
// must create an order together with all of its items or not at all.
type Gateway interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	CreateOrder(ctx context.Context, draft models.Order) (models.Order, error)
	// UpdateOrderStatus writes to only if the stored status still equals
	// from, otherwise it fails with ErrStatusConflict.
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (models.Order, error)

	GetBusinessSettings(ctx context.Context) (models.BusinessSettings, error)
	UpdateBusinessSettings(ctx context.Context, patch models.BusinessSettingsPatch) (models.BusinessSettings, error)
	ListActivePickupOptions(ctx context.Context) ([]models.PickupTimeOption, error)
	ReplacePickupOptions(ctx context.Context, options []models.PickupTimeOption) ([]models.PickupTimeOption, error)

	Authenticate(ctx context.Context, username, password string, role models.Role) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, user models.User, password string) (models.User, error)

	EnsureDefaults(ctx context.Context) error
	Ping(ctx context.Context) error
}

var (
	ErrNotFound             = errors.New("record not found")
	ErrStatusConflict       = errors.New("order status changed concurrently")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// PersistenceError wraps a driver failure. It is the only error class a
// caller may reasonably retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrap leaves nil and the package sentinels untouched.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrAuthenticationFailed) {
		return err
	}
	var persistenceErr *PersistenceError
	if errors.As(err, &persistenceErr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

const settingsID = "default"
