package ordering

import (
	"strings"

	"storefront/internal/models"
)

// PaymentMethods are the choices offered at checkout. Payment method is an
// open set, so BuildOrder only checks that one was given.
var PaymentMethods = []string{"現金", "信用卡", "行動支付"}

// BuildOrder validates a checkout and returns a pending order draft with one
// item per cart line. Prices come from the cart lines, never from the
// current menu, so a later price edit does not change an in-progress cart.
// Ids, owner and timestamps are left for the caller to fill in.
func BuildOrder(lines []models.CartLine, pickupTime, paymentMethod string, activeOptions []models.PickupTimeOption) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	pickupTime = strings.TrimSpace(pickupTime)
	paymentMethod = strings.TrimSpace(paymentMethod)
	if pickupTime == "" || paymentMethod == "" {
		return models.Order{}, ErrMissingSelection
	}

	if !isActiveOption(pickupTime, activeOptions) {
		return models.Order{}, ErrInvalidPickupTime
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := models.ZeroMoney
	for _, line := range lines {
		if line.Quantity <= 0 {
			return models.Order{}, &QuantityError{MenuItemID: line.MenuItemID, Quantity: line.Quantity}
		}

		items = append(items, models.OrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
		total = total.Add(line.LineTotal())
	}

	return models.Order{
		Total:         total,
		Status:        models.StatusPending,
		PickupTime:    pickupTime,
		PaymentMethod: paymentMethod,
		Items:         items,
	}, nil
}

func isActiveOption(text string, options []models.PickupTimeOption) bool {
	for _, option := range options {
		if option.IsActive && option.OptionText == text {
			return true
		}
	}
	return false
}
