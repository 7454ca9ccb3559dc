package store

import (
	"time"

	"github.com/google/uuid"

	"storefront/internal/models"
)

func orderIDs(orders []models.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}

func menuItemIDs(items []models.OrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.MenuItemID]; ok {
			continue
		}
		seen[item.MenuItemID] = struct{}{}
		ids = append(ids, item.MenuItemID)
	}
	return ids
}

func userIDs(orders []models.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}
	return ids
}

// nestOrders attaches items to their orders and menu items and users to
// those. A menu item deleted after the order was placed leaves MenuItem nil.
func nestOrders(orders []models.Order, items []models.OrderItem, menu []models.MenuItem, users []models.User) []models.Order {
	menuByID := make(map[string]models.MenuItem, len(menu))
	for _, m := range menu {
		menuByID[m.ID] = m
	}
	userByID := make(map[string]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	itemsByOrder := make(map[string][]models.OrderItem, len(orders))
	for _, item := range items {
		if m, ok := menuByID[item.MenuItemID]; ok {
			m := m
			item.MenuItem = &m
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	out := make([]models.Order, len(orders))
	for i, order := range orders {
		order.Items = itemsByOrder[order.ID]
		if u, ok := userByID[order.UserID]; ok {
			u := u
			order.User = &u
		}
		out[i] = order
	}
	return out
}

func defaultPickupOptions() []models.PickupTimeOption {
	options := make([]models.PickupTimeOption, len(models.DefaultPickupTimeTexts))
	for i, text := range models.DefaultPickupTimeTexts {
		options[i] = models.PickupTimeOption{OptionText: text, IsActive: true}
	}
	return options
}

// stampPickupOptions assigns ids and creation times. Each option is one
// millisecond after the previous so the createdAt sort keeps input order
// at the stores' timestamp precision.
func stampPickupOptions(options []models.PickupTimeOption, now time.Time) []models.PickupTimeOption {
	stamped := make([]models.PickupTimeOption, len(options))
	for i, option := range options {
		option.ID = uuid.NewString()
		option.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		stamped[i] = option
	}
	return stamped
}
