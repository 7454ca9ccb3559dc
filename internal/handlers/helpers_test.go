package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	t      *testing.T
	gw     store.Gateway
	mem    *store.MemoryStore
	carts  *cart.MemoryStore
	pub    *recordingPublisher
	router *gin.Engine
	users  map[string]models.User
	tokens map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithGateway(t, nil)
}

// newTestEnvWithGateway wraps the in-memory store with wrap when given, so
// tests can inject gateway failures.
func newTestEnvWithGateway(t *testing.T, wrap func(store.Gateway) store.Gateway) *testEnv {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemoryStore()
	require.NoError(t, mem.EnsureDefaults(ctx))

	var gw store.Gateway = mem
	if wrap != nil {
		gw = wrap(mem)
	}

	env := &testEnv{
		t:      t,
		gw:     gw,
		mem:    mem,
		carts:  cart.NewMemoryStore(time.Hour),
		pub:    &recordingPublisher{},
		users:  map[string]models.User{},
		tokens: map[string]string{},
	}
	env.router = NewRouter(Dependencies{
		Store:          gw,
		Carts:          env.carts,
		Events:         env.pub,
		JWTSecret:      testSecret,
		AccessTokenTTL: time.Hour,
		Location:       time.UTC,
	})

	for name, role := range map[string]models.Role{
		"amy":   models.RoleCustomer,
		"bob":   models.RoleCustomer,
		"sam":   models.RoleStaff,
		"megan": models.RoleManager,
	} {
		env.addUser(name, role)
	}
	return env
}

func (e *testEnv) addUser(username string, role models.Role) {
	e.t.Helper()
	user, err := e.mem.CreateUser(context.Background(), models.User{Username: username, Role: role, Name: username}, username+"-pw")
	require.NoError(e.t, err)
	token, _, err := middleware.IssueToken(user, testSecret, time.Hour, time.Now())
	require.NoError(e.t, err)
	e.users[username] = user
	e.tokens[username] = token
}

func (e *testEnv) menuItem(name string, price string, available bool) models.MenuItem {
	e.t.Helper()
	item, err := e.mem.CreateMenuItem(context.Background(), models.MenuItem{
		Name:      name,
		Price:     models.MustMoney(price),
		Category:  "主食",
		Available: available,
	})
	require.NoError(e.t, err)
	return item
}

func (e *testEnv) do(method, path, user string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doWithHeaders(method, path, user, body, nil)
}

func (e *testEnv) doWithHeaders(method, path, user string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[user])
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	MenuItemID string `json:"menu_item_id"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	require.Equal(t, code, body.Error)
	require.NotEmpty(t, body.Message)
	return body
}
