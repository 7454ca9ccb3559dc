package ordering

import (
	"time"

	"storefront/internal/models"
)

// transitions is the complete workflow. Statuses missing from the map, and
// the terminal ones, have no outgoing edge.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusPreparing},
	models.StatusPreparing: {models.StatusReady},
	models.StatusReady:     {models.StatusCompleted},
}

// Transition moves order to target on behalf of actor. Only Status and
// UpdatedAt change on success; the input order is never modified.
//
// Customers may only cancel their own pending orders. Managers act with
// staff rights.
func Transition(order models.Order, target models.OrderStatus, actor models.Role, now time.Time) (models.Order, error) {
	if !allowed(order.Status, target, actor) {
		return order, &TransitionError{From: order.Status, To: target, Actor: actor}
	}

	order.Status = target
	order.UpdatedAt = now
	return order, nil
}

// NextStatuses lists the statuses actor may move an order in status to.
func NextStatuses(status models.OrderStatus, actor models.Role) []models.OrderStatus {
	next := make([]models.OrderStatus, 0, 2)
	for _, candidate := range transitions[status] {
		if allowed(status, candidate, actor) {
			next = append(next, candidate)
		}
	}
	return next
}

func allowed(from, to models.OrderStatus, actor models.Role) bool {
	switch actor {
	case models.RoleCustomer:
		if from != models.StatusPending || to != models.StatusCancelled {
			return false
		}
	case models.RoleStaff, models.RoleManager:
	default:
		return false
	}

	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
