package models

import "time"

// OrderItem is one frozen line of an order. Price is the menu price at the
// time the item went into the cart.
type OrderItem struct {
	ID         string    `bson:"_id" json:"id"`
	OrderID    string    `bson:"orderId" json:"order_id"`
	MenuItemID string    `bson:"menuItemId" json:"menu_item_id"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	Price      Money     `bson:"price" json:"price"`
	MenuItem   *MenuItem `bson:"-" json:"menu_item,omitempty"`
}

func (i OrderItem) LineTotal() Money {
	return i.Price.Times(i.Quantity)
}

// Order defines the persisted order. Total is computed once at checkout and
// never reconciled with its items afterwards.
type Order struct {
	ID            string      `bson:"_id" json:"id"`
	UserID        string      `bson:"userId" json:"user_id"`
	Total         Money       `bson:"total" json:"total"`
	Status        OrderStatus `bson:"status" json:"status"`
	PickupTime    string      `bson:"pickupTime" json:"pickup_time"`
	PaymentMethod string      `bson:"paymentMethod" json:"payment_method"`
	CreatedAt     time.Time   `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updatedAt" json:"updated_at"`

	// Read-side joins, never stored on the order document itself.
	Items []OrderItem `bson:"-" json:"order_items,omitempty"`
	User  *User       `bson:"-" json:"user,omitempty"`
}
