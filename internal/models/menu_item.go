package models

import "time"

// MenuItem is a dish or drink on the menu. Unavailable items stay listed but
// cannot be added to a cart.
type MenuItem struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       Money     `bson:"price" json:"price"`
	Category    string    `bson:"category" json:"category"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Available   bool      `bson:"available" json:"available"`
	ImageURL    string    `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// MenuItemPatch carries the fields a manager chose to change. Nil fields are
// left untouched.
type MenuItemPatch struct {
	Name        *string
	Price       *Money
	Category    *string
	Description *string
	Available   *bool
	ImageURL    *string
}

func (p MenuItemPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil &&
		p.Description == nil && p.Available == nil && p.ImageURL == nil
}

// Apply returns item with the patch applied.
func (p MenuItemPatch) Apply(item MenuItem) MenuItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	return item
}
