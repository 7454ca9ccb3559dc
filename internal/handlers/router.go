package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/middleware"
	"storefront/internal/store"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	Store          store.Gateway
	Carts          cart.Store
	Events         events.Publisher
	JWTSecret      string
	AccessTokenTTL time.Duration
	IdempotencyTTL time.Duration
	Location       *time.Location
	LoginLimiter   *middleware.RateLimiter
}

// NewRouter mounts every route on a fresh engine.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.IdempotencyTTL <= 0 {
		deps.IdempotencyTTL = 24 * time.Hour
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery())

	r.GET("/health", Health(deps.Store))

	login := []gin.HandlerFunc{}
	if deps.LoginLimiter != nil {
		login = append(login, deps.LoginLimiter.Middleware())
	}
	login = append(login, Login(deps.Store, deps.JWTSecret, deps.AccessTokenTTL))
	r.POST("/auth/login", login...)
	r.GET("/auth/me", middleware.AuthGuard(deps.JWTSecret), Me(deps.Store))

	r.GET("/menu", GetMenu(deps.Store))
	r.GET("/settings", GetSettings(deps.Store))
	r.GET("/pickup-options", GetPickupOptions(deps.Store))

	customer := r.Group("/customer")
	customer.Use(middleware.CustomerOnly(deps.JWTSecret))
	{
		customer.GET("/cart", GetCart(deps.Carts))
		customer.POST("/cart/items", AddCartItem(deps.Store, deps.Carts))
		customer.PATCH("/cart/items/:id", UpdateCartItem(deps.Carts))
		customer.DELETE("/cart/items/:id", RemoveCartItem(deps.Carts))
		customer.DELETE("/cart", ClearCart(deps.Carts))

		customer.POST("/orders", Checkout(deps.Store, deps.Carts, deps.Events, deps.IdempotencyTTL))
		customer.GET("/orders", GetMyOrders(deps.Store))
		customer.POST("/orders/:id/cancel", CancelMyOrder(deps.Store, deps.Events))
	}

	staff := r.Group("/staff")
	staff.Use(middleware.StaffOrManager(deps.JWTSecret))
	{
		staff.GET("/orders", ListStaffOrders(deps.Store))
		staff.POST("/orders/:id/status", UpdateOrderStatus(deps.Store, deps.Events))
	}

	manager := r.Group("/manager")
	manager.Use(middleware.ManagerOnly(deps.JWTSecret))
	{
		manager.GET("/menu", GetMenu(deps.Store))
		manager.POST("/menu", CreateMenuItem(deps.Store))
		manager.PUT("/menu/:id", UpdateMenuItem(deps.Store))
		manager.DELETE("/menu/:id", DeleteMenuItem(deps.Store))

		manager.GET("/orders", ListAllOrders(deps.Store))
		manager.GET("/stats", GetStats(deps.Store, deps.Location))
		manager.PUT("/settings", UpdateSettings(deps.Store))
		manager.PUT("/pickup-options", ReplacePickupOptions(deps.Store))
	}

	return r
}
