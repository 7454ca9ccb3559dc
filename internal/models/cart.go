package models

import "time"

// CartLine is a menu item in a customer's cart with the price captured when
// it was added.
type CartLine struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      Money  `json:"price"`
	Quantity   int    `json:"quantity"`
}

func (l CartLine) LineTotal() Money {
	return l.Price.Times(l.Quantity)
}

// Cart belongs to a single customer.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DailyStats summarizes the orders created on one calendar day.
type DailyStats struct {
	Date           string `json:"date"`
	Count          int    `json:"count"`
	Revenue        Money  `json:"revenue"`
	PendingCount   int    `json:"pending_count"`
	CompletedCount int    `json:"completed_count"`
}
