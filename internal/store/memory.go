package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// MemoryStore keeps everything in process. It backs local demos and tests
// and loses all data on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]models.User
	menu     map[string]models.MenuItem
	orders   map[string]models.Order
	items    map[string][]models.OrderItem
	settings *models.BusinessSettings
	options  []models.PickupTimeOption
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    time.Now,
		users:  map[string]models.User{},
		menu:   map[string]models.MenuItem{},
		orders: map[string]models.Order{},
		items:  map[string][]models.OrderItem{},
	}
}

// SetClock replaces the time source used for timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) ListMenuItems(context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *MemoryStore) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menu[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) CreateMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.menu[item.ID] = item
	return item, nil
}

func (s *MemoryStore) UpdateMenuItem(_ context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	item = patch.Apply(item)
	item.UpdatedAt = s.now().UTC()
	s.menu[id] = item
	return item, nil
}

func (s *MemoryStore) DeleteMenuItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menu[id]; !ok {
		return ErrNotFound
	}
	delete(s.menu, id)
	return nil
}

func (s *MemoryStore) ListOrders(context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectOrders(func(models.Order) bool { return true }, true), nil
}

func (s *MemoryStore) ListOrdersForUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectOrders(func(o models.Order) bool { return o.UserID == userID }, false), nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.collectOrders(func(o models.Order) bool { return o.ID == id }, true)
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}

// collectOrders must run with the lock held.
func (s *MemoryStore) collectOrders(match func(models.Order) bool, withUsers bool) []models.Order {
	orders := []models.Order{}
	var items []models.OrderItem
	for _, order := range s.orders {
		if !match(order) {
			continue
		}
		orders = append(orders, order)
		items = append(items, s.items[order.ID]...)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	menu := make([]models.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		menu = append(menu, item)
	}
	var users []models.User
	if withUsers {
		for _, user := range s.users {
			users = append(users, user)
		}
	}
	return nestOrders(orders, items, menu, users)
}

func (s *MemoryStore) CreateOrder(_ context.Context, draft models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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

	stored := order
	stored.Items = nil
	s.orders[order.ID] = stored
	s.items[order.ID] = items
	return order, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return models.Order{}, ErrNotFound
	}
	if order.Status != from {
		s.mu.Unlock()
		return models.Order{}, ErrStatusConflict
	}
	order.Status = to
	order.UpdatedAt = s.now().UTC()
	s.orders[id] = order
	s.mu.Unlock()

	return s.GetOrder(ctx, id)
}

func (s *MemoryStore) GetBusinessSettings(context.Context) (models.BusinessSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.ensureSettings(), nil
}

func (s *MemoryStore) UpdateBusinessSettings(_ context.Context, patch models.BusinessSettingsPatch) (models.BusinessSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := patch.Apply(*s.ensureSettings())
	updated.UpdatedAt = s.now().UTC()
	s.settings = &updated
	return updated, nil
}

// ensureSettings must run with the write lock held.
func (s *MemoryStore) ensureSettings() *models.BusinessSettings {
	if s.settings == nil {
		defaults := models.DefaultBusinessSettings()
		defaults.ID = settingsID
		defaults.UpdatedAt = s.now().UTC()
		s.settings = &defaults
	}
	return s.settings
}

func (s *MemoryStore) ListActivePickupOptions(context.Context) ([]models.PickupTimeOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := []models.PickupTimeOption{}
	for _, option := range s.options {
		if option.IsActive {
			active = append(active, option)
		}
	}
	return active, nil
}

func (s *MemoryStore) ReplacePickupOptions(_ context.Context, replacement []models.PickupTimeOption) ([]models.PickupTimeOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := stampPickupOptions(replacement, s.now().UTC())
	s.options = append([]models.PickupTimeOption(nil), created...)
	return created, nil
}

func (s *MemoryStore) Authenticate(_ context.Context, username, password string, role models.Role) (models.User, error) {
	s.mu.RLock()
	var candidates []models.User
	for _, user := range s.users {
		if user.Username == username && user.Role == role {
			candidates = append(candidates, user)
		}
	}
	s.mu.RUnlock()

	return matchSingleUser(candidates, password)
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user models.User, password string) (models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, wrap("hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) EnsureDefaults(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureSettings()
	if len(s.options) == 0 {
		s.options = stampPickupOptions(defaultPickupOptions(), s.now().UTC())
	}
	return nil
}

var (
	_ Gateway = (*MemoryStore)(nil)
	_ Gateway = (*MongoStore)(nil)
	_ Gateway = (*PostgresStore)(nil)
)
