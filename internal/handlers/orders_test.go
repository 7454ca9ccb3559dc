package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

func (e *testEnv) addToCart(user, menuItemID string) *CartResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/customer/cart/items", user, gin.H{"menu_item_id": menuItemID})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[CartResponse](e.t, w)
	return &resp
}

func (e *testEnv) checkout(user string) models.Order {
	e.t.Helper()
	w := e.do(http.MethodPost, "/customer/orders", user, gin.H{"pickup_time": "30分鐘後", "payment_method": "現金"})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Order](e.t, w)
}

func TestCheckoutScenario(t *testing.T) {
	env := newTestEnv(t)
	a := env.menuItem("滷肉飯", "50", true)
	b := env.menuItem("貢丸湯", "30", true)

	env.addToCart("amy", a.ID)
	env.addToCart("amy", a.ID)
	cart := env.addToCart("amy", b.ID)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.True(t, cart.Total.Equal(models.MoneyFromInt(130)))

	order := env.checkout("amy")
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, order.Total.Equal(models.MoneyFromInt(130)))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, env.users["amy"].ID, order.UserID)

	w := env.do(http.MethodGet, "/customer/cart", "amy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, w).Lines, "cart is cleared after checkout")

	w = env.do(http.MethodGet, "/customer/orders", "amy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.Order](t, w)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 2)
	require.NotNil(t, mine[0].Items[0].MenuItem)

	w = env.do(http.MethodGet, "/customer/orders", "bob", nil)
	assert.Empty(t, decode[[]models.Order](t, w), "orders are scoped to their owner")

	assert.Equal(t, []string{events.TypeOrderPlaced}, env.pub.types())
}

func TestCheckoutUsesPriceFromWhenItemWasAdded(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("雞排", "80", true)
	env.addToCart("amy", item.ID)

	w := env.do(http.MethodPut, "/manager/menu/"+item.ID, "megan", gin.H{"price": 95})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order := env.checkout("amy")
	assert.True(t, order.Total.Equal(models.MoneyFromInt(80)))
}

func TestCheckoutRejectionsKeepCart(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/customer/orders", "amy", gin.H{})
	requireError(t, w, http.StatusBadRequest, "empty_cart")

	w = env.do(http.MethodPost, "/customer/orders", "amy", nil)
	requireError(t, w, http.StatusBadRequest, "empty_cart")

	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)

	tests := []struct {
		name string
		body gin.H
		code string
	}{
		{name: "missing pickup time", body: gin.H{"payment_method": "現金"}, code: "missing_selection"},
		{name: "blank payment", body: gin.H{"pickup_time": "30分鐘後", "payment_method": "  "}, code: "missing_selection"},
		{name: "inactive pickup time", body: gin.H{"pickup_time": "3小時後", "payment_method": "現金"}, code: "invalid_pickup_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/customer/orders", "amy", tt.body)
			requireError(t, w, http.StatusBadRequest, tt.code)
		})
	}

	w = env.do(http.MethodGet, "/customer/cart", "amy", nil)
	cart := decode[CartResponse](t, w)
	require.Len(t, cart.Lines, 1, "failed checkout leaves the cart untouched")
	assert.Empty(t, env.pub.types())
}

func TestCheckoutWithIdempotencyKeyPlacesOneOrder(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)

	body := gin.H{"pickup_time": "1小時後", "payment_method": "行動支付"}
	headers := map[string]string{IdempotencyHeader: "retry-1"}

	first := env.doWithHeaders(http.MethodPost, "/customer/orders", "amy", body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := env.doWithHeaders(http.MethodPost, "/customer/orders", "amy", body, headers)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	assert.Equal(t, decode[models.Order](t, first).ID, decode[models.Order](t, second).ID)

	orders, err := env.gw.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestConcurrentCheckoutsWithSameKeyPlaceOneOrder(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)

	body := gin.H{"pickup_time": "30分鐘後", "payment_method": "現金"}
	headers := map[string]string{IdempotencyHeader: "double-tap"}

	const attempts = 8
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- env.doWithHeaders(http.MethodPost, "/customer/orders", "amy", body, headers).Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusOK, http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, created)

	orders, err := env.gw.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutKeyHeldByRunningCheckout(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)

	_, reserved, err := env.carts.ReserveIdempotency(context.Background(), env.users["amy"].ID+":busy", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	w := env.doWithHeaders(http.MethodPost, "/customer/orders", "amy",
		gin.H{"pickup_time": "30分鐘後", "payment_method": "現金"},
		map[string]string{IdempotencyHeader: "busy"})
	requireError(t, w, http.StatusConflict, "checkout_in_progress")

	w = env.do(http.MethodGet, "/customer/cart", "amy", nil)
	assert.Len(t, decode[CartResponse](t, w).Lines, 1)
}

func TestRejectedCheckoutReleasesKey(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)
	headers := map[string]string{IdempotencyHeader: "fix-and-retry"}

	w := env.doWithHeaders(http.MethodPost, "/customer/orders", "amy", gin.H{"payment_method": "現金"}, headers)
	requireError(t, w, http.StatusBadRequest, "missing_selection")

	w = env.doWithHeaders(http.MethodPost, "/customer/orders", "amy",
		gin.H{"pickup_time": "30分鐘後", "payment_method": "現金"}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCartOperations(t *testing.T) {
	env := newTestEnv(t)
	a := env.menuItem("滷肉飯", "50", true)
	b := env.menuItem("燙青菜", "35", true)
	env.addToCart("amy", a.ID)
	env.addToCart("amy", b.ID)

	w := env.do(http.MethodPatch, "/customer/cart/items/"+a.ID, "amy", gin.H{"delta": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[CartResponse](t, w)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, cart.Total.Equal(models.MoneyFromInt(185)))

	w = env.do(http.MethodPatch, "/customer/cart/items/"+a.ID, "amy", gin.H{"delta": -3})
	cart = decode[CartResponse](t, w)
	require.Len(t, cart.Lines, 1, "quantity reaching zero removes the line")
	assert.Equal(t, b.ID, cart.Lines[0].MenuItemID)

	w = env.do(http.MethodPatch, "/customer/cart/items/"+a.ID, "amy", gin.H{"delta": 1})
	requireError(t, w, http.StatusNotFound, "not_found")

	w = env.do(http.MethodPatch, "/customer/cart/items/"+b.ID, "amy", gin.H{"delta": 0})
	requireError(t, w, http.StatusBadRequest, "validation_failed")

	w = env.do(http.MethodDelete, "/customer/cart/items/"+b.ID, "amy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, w).Lines)

	env.addToCart("amy", a.ID)
	w = env.do(http.MethodDelete, "/customer/cart", "amy", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodGet, "/customer/cart", "amy", nil)
	assert.Empty(t, decode[CartResponse](t, w).Lines)
}

func TestAddUnavailableOrMissingItem(t *testing.T) {
	env := newTestEnv(t)
	soldOut := env.menuItem("牛肉麵", "150", false)

	w := env.do(http.MethodPost, "/customer/cart/items", "amy", gin.H{"menu_item_id": soldOut.ID})
	body := requireError(t, w, http.StatusConflict, "item_unavailable")
	assert.Equal(t, soldOut.ID, body.MenuItemID)

	w = env.do(http.MethodPost, "/customer/cart/items", "amy", gin.H{"menu_item_id": "missing"})
	requireError(t, w, http.StatusNotFound, "not_found")
}

func TestCustomerCancel(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)
	order := env.checkout("amy")

	w := env.do(http.MethodPost, "/customer/orders/"+order.ID+"/cancel", "bob", nil)
	requireError(t, w, http.StatusNotFound, "not_found")

	w = env.do(http.MethodPost, "/customer/orders/"+order.ID+"/cancel", "amy", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusCancelled, decode[models.Order](t, w).Status)

	w = env.do(http.MethodPost, "/customer/orders/"+order.ID+"/cancel", "amy", nil)
	requireError(t, w, http.StatusConflict, "invalid_transition")

	assert.Equal(t, []string{events.TypeOrderPlaced, events.TypeOrderStatusChanged}, env.pub.types())
}

func TestCustomerCannotCancelConfirmedOrder(t *testing.T) {
	env := newTestEnv(t)
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)
	order := env.checkout("amy")

	w := env.do(http.MethodPost, "/staff/orders/"+order.ID+"/status", "sam", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/customer/orders/"+order.ID+"/cancel", "amy", nil)
	requireError(t, w, http.StatusConflict, "invalid_transition")
}

type conflictingGateway struct {
	store.Gateway
}

func (conflictingGateway) UpdateOrderStatus(context.Context, string, models.OrderStatus, models.OrderStatus) (models.Order, error) {
	return models.Order{}, store.ErrStatusConflict
}

func TestLostStatusRaceIsAConflict(t *testing.T) {
	env := newTestEnvWithGateway(t, func(gw store.Gateway) store.Gateway {
		return conflictingGateway{Gateway: gw}
	})
	item := env.menuItem("紅茶", "25", true)
	env.addToCart("amy", item.ID)
	order := env.checkout("amy")

	w := env.do(http.MethodPost, "/staff/orders/"+order.ID+"/status", "sam", gin.H{"status": "confirmed"})
	body := requireError(t, w, http.StatusConflict, "status_conflict")
	assert.Equal(t, "訂單狀態已被更新，請重新整理", body.Message)
}
