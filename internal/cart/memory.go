package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
)

type expiring struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when no Redis is
// configured. Entries expire lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]expiring
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]expiring{}}
}

func (m *MemoryStore) load(key string) (interface{}, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *MemoryStore) store(key string, value interface{}, ttl time.Duration) {
	entry := expiring{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
}

func (m *MemoryStore) Get(_ context.Context, userID string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.load(cartKey(userID))
	if !ok {
		return emptyCart(userID), nil
	}
	cart := value.(models.Cart)
	cart.Lines = append([]models.CartLine{}, cart.Lines...)
	return cart, nil
}

func (m *MemoryStore) Save(_ context.Context, cart models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart.UpdatedAt = m.now().UTC()
	cart.Lines = append([]models.CartLine{}, cart.Lines...)
	m.store(cartKey(cart.UserID), cart, m.ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, cartKey(userID))
	return nil
}

func (m *MemoryStore) ReserveIdempotency(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.load(idempotencyKey(key))
	if !ok {
		m.store(idempotencyKey(key), pendingCheckout, ttl)
		return "", true, nil
	}
	if orderID := value.(string); orderID != pendingCheckout {
		return orderID, false, nil
	}
	return "", false, nil
}

func (m *MemoryStore) SetIdempotency(_ context.Context, key, orderID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(idempotencyKey(key), orderID, ttl)
	return nil
}

func (m *MemoryStore) ReleaseIdempotency(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, idempotencyKey(key))
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
