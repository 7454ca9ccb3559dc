package store

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Row types keep GORM tags out of the shared models.

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"index:idx_users_username_role;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"index:idx_users_username_role;size:16;not null"`
	Name         string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type menuItemRow struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Name        string          `gorm:"index:idx_menu_items_category_name,priority:2;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Category    string          `gorm:"index:idx_menu_items_category_name,priority:1;not null"`
	Description string
	Available   bool `gorm:"not null;default:true"`
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (menuItemRow) TableName() string { return "menu_items" }

type orderRow struct {
	ID            string          `gorm:"primaryKey;size:36"`
	UserID        string          `gorm:"size:36;index;not null"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status        string          `gorm:"size:16;index;not null"`
	PickupTime    string          `gorm:"not null"`
	PaymentMethod string          `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time

	Items []orderItemRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User  *userRow       `gorm:"foreignKey:UserID"`
}

func (orderRow) TableName() string { return "orders" }

// orderItemRow has no foreign key to menu_items: a deleted menu item must
// not take historic order lines with it.
type orderItemRow struct {
	ID         string          `gorm:"primaryKey;size:36"`
	OrderID    string          `gorm:"size:36;index;not null"`
	MenuItemID string          `gorm:"size:36;not null"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

type businessSettingsRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	OpenTime  string `gorm:"size:5;not null"`
	CloseTime string `gorm:"size:5;not null"`
	IsOpen    bool   `gorm:"not null"`
	UpdatedAt time.Time
}

func (businessSettingsRow) TableName() string { return "business_settings" }

type pickupOptionRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	OptionText string `gorm:"not null"`
	IsActive   bool   `gorm:"index;not null"`
	CreatedAt  time.Time
}

func (pickupOptionRow) TableName() string { return "pickup_time_options" }

// Tables lists the row types AutoMigrate creates.
func Tables() []interface{} {
	return []interface{}{
		&userRow{},
		&menuItemRow{},
		&orderRow{},
		&orderItemRow{},
		&businessSettingsRow{},
		&pickupOptionRow{},
	}
}

func userFromRow(r userRow) models.User {
	return models.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		Name:         r.Name,
		Email:        r.Email,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func userToRow(u models.User) userRow {
	return userRow{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Name:         u.Name,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func menuItemFromRow(r menuItemRow) models.MenuItem {
	return models.MenuItem{
		ID:          r.ID,
		Name:        r.Name,
		Price:       models.NewMoney(r.Price),
		Category:    r.Category,
		Description: r.Description,
		Available:   r.Available,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func menuItemToRow(m models.MenuItem) menuItemRow {
	return menuItemRow{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price.Decimal,
		Category:    m.Category,
		Description: m.Description,
		Available:   m.Available,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func orderFromRow(r orderRow) models.Order {
	order := models.Order{
		ID:            r.ID,
		UserID:        r.UserID,
		Total:         models.NewMoney(r.Total),
		Status:        models.OrderStatus(r.Status),
		PickupTime:    r.PickupTime,
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, orderItemFromRow(item))
	}
	if r.User != nil {
		user := userFromRow(*r.User)
		order.User = &user
	}
	return order
}

func orderToRow(o models.Order) orderRow {
	row := orderRow{
		ID:            o.ID,
		UserID:        o.UserID,
		Total:         o.Total.Decimal,
		Status:        string(o.Status),
		PickupTime:    o.PickupTime,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, item := range o.Items {
		row.Items = append(row.Items, orderItemRow{
			ID:         item.ID,
			OrderID:    item.OrderID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price.Decimal,
		})
	}
	return row
}

func orderItemFromRow(r orderItemRow) models.OrderItem {
	return models.OrderItem{
		ID:         r.ID,
		OrderID:    r.OrderID,
		MenuItemID: r.MenuItemID,
		Quantity:   r.Quantity,
		Price:      models.NewMoney(r.Price),
	}
}

func settingsFromRow(r businessSettingsRow) models.BusinessSettings {
	return models.BusinessSettings{
		ID:        r.ID,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		IsOpen:    r.IsOpen,
		UpdatedAt: r.UpdatedAt,
	}
}

func pickupOptionFromRow(r pickupOptionRow) models.PickupTimeOption {
	return models.PickupTimeOption{
		ID:         r.ID,
		OptionText: r.OptionText,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
	}
}

func pickupOptionToRow(o models.PickupTimeOption) pickupOptionRow {
	return pickupOptionRow{
		ID:         o.ID,
		OptionText: o.OptionText,
		IsActive:   o.IsActive,
		CreatedAt:  o.CreatedAt,
	}
}
