package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// PostgresStore is the relational gateway. Order items and users are
// preloaded; menu items are joined in Go because order lines may outlive
// the item they reference.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

/* =========================
   MENU
========================= */

func (s *PostgresStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var rows []menuItemRow
	if err := s.db.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, wrap("list menu items", err)
	}
	items := make([]models.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, menuItemFromRow(row))
	}
	return items, nil
}

func (s *PostgresStore) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	var row menuItemRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if notFound(err) {
		return models.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return models.MenuItem{}, wrap("get menu item", err)
	}
	return menuItemFromRow(row), nil
}

func (s *PostgresStore) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	now := s.now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	row := menuItemToRow(item)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.MenuItem{}, wrap("create menu item", err)
	}
	return menuItemFromRow(row), nil
}

func (s *PostgresStore) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	updates := map[string]interface{}{"updated_at": s.now().UTC()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Price != nil {
		updates["price"] = patch.Price.Decimal
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Available != nil {
		updates["available"] = *patch.Available
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	res := s.db.WithContext(ctx).Model(&menuItemRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.MenuItem{}, wrap("update menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.MenuItem{}, ErrNotFound
	}
	return s.GetMenuItem(ctx, id)
}

func (s *PostgresStore) DeleteMenuItem(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&menuItemRow{})
	if res.Error != nil {
		return wrap("delete menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================
   ORDERS
========================= */

func (s *PostgresStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, s.db.WithContext(ctx).Preload("User"))
}

func (s *PostgresStore) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	orders, err := s.findOrders(ctx, s.db.WithContext(ctx).Preload("User").Where("id = ?", id))
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}

func (s *PostgresStore) findOrders(ctx context.Context, query *gorm.DB) ([]models.Order, error) {
	var rows []orderRow
	if err := query.Preload("Items").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, wrap("list orders", err)
	}

	orders := make([]models.Order, 0, len(rows))
	var (
		items []models.OrderItem
		users []models.User
	)
	for _, row := range rows {
		order := orderFromRow(row)
		items = append(items, order.Items...)
		if order.User != nil {
			users = append(users, *order.User)
		}
		order.Items = nil
		orders = append(orders, order)
	}

	var menu []models.MenuItem
	if ids := menuItemIDs(items); len(ids) > 0 {
		var menuRows []menuItemRow
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&menuRows).Error; err != nil {
			return nil, wrap("list ordered menu items", err)
		}
		for _, row := range menuRows {
			menu = append(menu, menuItemFromRow(row))
		}
	}

	return nestOrders(orders, items, menu, users), nil
}

// CreateOrder writes the order row and its items in one transaction.
func (s *PostgresStore) CreateOrder(ctx context.Context, draft models.Order) (models.Order, error) {
	now := s.now().UTC()
	order := draft
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.User = nil

	items := make([]models.OrderItem, len(draft.Items))
	for i, item := range draft.Items {
		item.ID = uuid.NewString()
		item.OrderID = order.ID
		item.MenuItem = nil
		items[i] = item
	}
	order.Items = items

	row := orderToRow(order)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return models.Order{}, wrap("create order", err)
	}
	return order, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (models.Order, error) {
	res := s.db.WithContext(ctx).Model(&orderRow{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{"status": string(to), "updated_at": s.now().UTC()})
	if res.Error != nil {
		return models.Order{}, wrap("update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&orderRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return models.Order{}, wrap("count orders", err)
		}
		if count == 0 {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, ErrStatusConflict
	}
	return s.GetOrder(ctx, id)
}

/* =========================
   SETTINGS & PICKUP OPTIONS
========================= */

func (s *PostgresStore) GetBusinessSettings(ctx context.Context) (models.BusinessSettings, error) {
	settings, err := s.findSettings(ctx)
	if !errors.Is(err, ErrNotFound) {
		return settings, err
	}
	if err := s.ensureSettings(s.db.WithContext(ctx)); err != nil {
		return models.BusinessSettings{}, err
	}
	return s.findSettings(ctx)
}

func (s *PostgresStore) findSettings(ctx context.Context) (models.BusinessSettings, error) {
	var row businessSettingsRow
	err := s.db.WithContext(ctx).Where("id = ?", settingsID).First(&row).Error
	if notFound(err) {
		return models.BusinessSettings{}, ErrNotFound
	}
	if err != nil {
		return models.BusinessSettings{}, wrap("get business settings", err)
	}
	return settingsFromRow(row), nil
}

func (s *PostgresStore) UpdateBusinessSettings(ctx context.Context, patch models.BusinessSettingsPatch) (models.BusinessSettings, error) {
	updates := map[string]interface{}{"updated_at": s.now().UTC()}
	if patch.OpenTime != nil {
		updates["open_time"] = *patch.OpenTime
	}
	if patch.CloseTime != nil {
		updates["close_time"] = *patch.CloseTime
	}
	if patch.IsOpen != nil {
		updates["is_open"] = *patch.IsOpen
	}

	var row businessSettingsRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureSettings(tx); err != nil {
			return err
		}
		if err := tx.Model(&businessSettingsRow{}).Where("id = ?", settingsID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", settingsID).First(&row).Error
	})
	if err != nil {
		return models.BusinessSettings{}, wrap("update business settings", err)
	}
	return settingsFromRow(row), nil
}

func (s *PostgresStore) ensureSettings(db *gorm.DB) error {
	defaults := models.DefaultBusinessSettings()
	row := businessSettingsRow{
		ID:        settingsID,
		OpenTime:  defaults.OpenTime,
		CloseTime: defaults.CloseTime,
		IsOpen:    defaults.IsOpen,
		UpdatedAt: s.now().UTC(),
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	return wrap("ensure business settings", err)
}

func (s *PostgresStore) ListActivePickupOptions(ctx context.Context) ([]models.PickupTimeOption, error) {
	var rows []pickupOptionRow
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, wrap("list pickup options", err)
	}
	active := make([]models.PickupTimeOption, 0, len(rows))
	for _, row := range rows {
		active = append(active, pickupOptionFromRow(row))
	}
	return active, nil
}

func (s *PostgresStore) ReplacePickupOptions(ctx context.Context, replacement []models.PickupTimeOption) ([]models.PickupTimeOption, error) {
	created := stampPickupOptions(replacement, s.now().UTC())
	rows := make([]pickupOptionRow, len(created))
	for i, option := range created {
		rows[i] = pickupOptionToRow(option)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&pickupOptionRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, wrap("replace pickup options", err)
	}
	return created, nil
}

func (s *PostgresStore) seedPickupOptions(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&pickupOptionRow{}).Count(&count).Error; err != nil {
		return wrap("count pickup options", err)
	}
	if count > 0 {
		return nil
	}

	seeded := stampPickupOptions(defaultPickupOptions(), s.now().UTC())
	rows := make([]pickupOptionRow, len(seeded))
	for i, option := range seeded {
		rows[i] = pickupOptionToRow(option)
	}
	return wrap("seed pickup options", s.db.WithContext(ctx).Create(&rows).Error)
}

/* =========================
   USERS
========================= */

func (s *PostgresStore) Authenticate(ctx context.Context, username, password string, role models.Role) (models.User, error) {
	var rows []userRow
	err := s.db.WithContext(ctx).Where("username = ? AND role = ?", username, string(role)).Find(&rows).Error
	if err != nil {
		return models.User{}, wrap("find users", err)
	}
	candidates := make([]models.User, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, userFromRow(row))
	}
	return matchSingleUser(candidates, password)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if notFound(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, wrap("get user", err)
	}
	return userFromRow(row), nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user models.User, password string) (models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, wrap("hash password", err)
	}
	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userToRow(user)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.User{}, wrap("create user", err)
	}
	return user, nil
}

func (s *PostgresStore) EnsureDefaults(ctx context.Context) error {
	if err := s.ensureSettings(s.db.WithContext(ctx)); err != nil {
		return err
	}
	return s.seedPickupOptions(ctx)
}
