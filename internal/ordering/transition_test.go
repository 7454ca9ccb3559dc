package ordering

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

type edge struct {
	from models.OrderStatus
	to   models.OrderStatus
}

var staffEdges = map[edge]bool{
	{models.StatusPending, models.StatusConfirmed}:   true,
	{models.StatusPending, models.StatusCancelled}:   true,
	{models.StatusConfirmed, models.StatusPreparing}: true,
	{models.StatusPreparing, models.StatusReady}:     true,
	{models.StatusReady, models.StatusCompleted}:     true,
}

var customerEdges = map[edge]bool{
	{models.StatusPending, models.StatusCancelled}: true,
}

func TestTransitionGrid(t *testing.T) {
	createdAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	now := createdAt.Add(time.Hour)

	actors := map[models.Role]map[edge]bool{
		models.RoleStaff:    staffEdges,
		models.RoleManager:  staffEdges,
		models.RoleCustomer: customerEdges,
		models.Role("guest"): {},
	}

	for actor, allowedEdges := range actors {
		for _, from := range models.AllStatuses {
			for _, to := range models.AllStatuses {
				name := fmt.Sprintf("%s/%s->%s", actor, from, to)
				t.Run(name, func(t *testing.T) {
					order := models.Order{
						ID:        "order-1",
						UserID:    "user-1",
						Total:     models.MoneyFromInt(130),
						Status:    from,
						CreatedAt: createdAt,
						UpdatedAt: createdAt,
					}

					got, err := Transition(order, to, actor, now)
					if allowedEdges[edge{from, to}] {
						require.NoError(t, err)
						assert.Equal(t, to, got.Status)
						assert.Equal(t, now, got.UpdatedAt)
						return
					}

					require.Error(t, err)
					assert.True(t, errors.Is(err, ErrInvalidTransition))
					var transitionErr *TransitionError
					require.True(t, errors.As(err, &transitionErr))
					assert.Equal(t, from, transitionErr.From)
					assert.Equal(t, to, transitionErr.To)
					assert.Equal(t, from, got.Status)
				})
			}
		}
	}
}

func TestTransitionOnlyTouchesStatusAndUpdatedAt(t *testing.T) {
	createdAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	order := models.Order{
		ID:            "order-1",
		UserID:        "user-1",
		Total:         models.MustMoney("99.50"),
		Status:        models.StatusPending,
		PickupTime:    "30分鐘後",
		PaymentMethod: "現金",
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
		Items:         []models.OrderItem{{ID: "i1", MenuItemID: "a", Quantity: 1, Price: models.MustMoney("99.50")}},
	}
	now := createdAt.Add(5 * time.Minute)

	got, err := Transition(order, models.StatusConfirmed, models.RoleStaff, now)
	require.NoError(t, err)

	want := order
	want.Status = models.StatusConfirmed
	want.UpdatedAt = now
	assert.Equal(t, want, got)
	assert.Equal(t, models.StatusPending, order.Status, "input order must not change")
}

func TestReadyToCompletedThenNoWayBack(t *testing.T) {
	order := models.Order{ID: "o", Status: models.StatusReady}

	completed, err := Transition(order, models.StatusCompleted, models.RoleStaff, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	_, err = Transition(completed, models.StatusPending, models.RoleStaff, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCustomerCannotCancelOnceOrderIsPreparing(t *testing.T) {
	order := models.Order{ID: "o", Status: models.StatusPreparing}

	_, err := Transition(order, models.StatusCancelled, models.RoleCustomer, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t,
		[]models.OrderStatus{models.StatusConfirmed, models.StatusCancelled},
		NextStatuses(models.StatusPending, models.RoleStaff))
	assert.Equal(t,
		[]models.OrderStatus{models.StatusCancelled},
		NextStatuses(models.StatusPending, models.RoleCustomer))
	assert.Empty(t, NextStatuses(models.StatusReady, models.RoleCustomer))
	assert.Equal(t,
		[]models.OrderStatus{models.StatusCompleted},
		NextStatuses(models.StatusReady, models.RoleManager))
	assert.Empty(t, NextStatuses(models.StatusCompleted, models.RoleStaff))
	assert.Empty(t, NextStatuses(models.StatusCancelled, models.RoleStaff))
}
