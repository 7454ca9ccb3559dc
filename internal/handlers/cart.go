package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

type CartResponse struct {
	models.Cart
	Total models.Money `json:"total"`
}

func cartResponse(cart models.Cart) CartResponse {
	return CartResponse{Cart: cart, Total: ordering.CartTotal(cart)}
}

type AddCartItemRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
}

type UpdateCartItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func cartStoreError(op string, err error) error {
	return &store.PersistenceError{Op: op, Err: err}
}

func hasLine(c models.Cart, menuItemID string) bool {
	for _, line := range c.Lines {
		if line.MenuItemID == menuItemID {
			return true
		}
	}
	return false
}

func GetCart(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customer/cart"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		current, err := carts.Get(ctx, session.UserID)
		if err != nil {
			respondError(c, route, cartStoreError("load cart", err))
			return
		}
		c.JSON(http.StatusOK, cartResponse(current))
	}
}

// AddCartItem adds one of the menu item at its current price.
func AddCartItem(gw store.Gateway, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /customer/cart/items"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		item, err := gw.GetMenuItem(ctx, strings.TrimSpace(req.MenuItemID))
		if err != nil {
			respondError(c, route, err)
			return
		}

		current, err := carts.Get(ctx, session.UserID)
		if err != nil {
			respondError(c, route, cartStoreError("load cart", err))
			return
		}

		updated, err := ordering.AddToCart(current, item)
		if err != nil {
			respondError(c, route, err)
			return
		}
		if err := carts.Save(ctx, updated); err != nil {
			respondError(c, route, cartStoreError("save cart", err))
			return
		}
		c.JSON(http.StatusOK, cartResponse(updated))
	}
}

// UpdateCartItem changes a line's quantity by delta and drops the line when
// it reaches zero.
func UpdateCartItem(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /customer/cart/items/:id"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		current, err := carts.Get(ctx, session.UserID)
		if err != nil {
			respondError(c, route, cartStoreError("load cart", err))
			return
		}
		id := c.Param("id")
		if !hasLine(current, id) {
			respondError(c, route, store.ErrNotFound)
			return
		}

		updated := ordering.UpdateQuantity(current, id, req.Delta)
		if err := carts.Save(ctx, updated); err != nil {
			respondError(c, route, cartStoreError("save cart", err))
			return
		}
		c.JSON(http.StatusOK, cartResponse(updated))
	}
}

func RemoveCartItem(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /customer/cart/items/:id"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		current, err := carts.Get(ctx, session.UserID)
		if err != nil {
			respondError(c, route, cartStoreError("load cart", err))
			return
		}
		id := c.Param("id")
		if !hasLine(current, id) {
			respondError(c, route, store.ErrNotFound)
			return
		}

		updated := ordering.RemoveLine(current, id)
		if err := carts.Save(ctx, updated); err != nil {
			respondError(c, route, cartStoreError("save cart", err))
			return
		}
		c.JSON(http.StatusOK, cartResponse(updated))
	}
}

func ClearCart(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /customer/cart"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := carts.Delete(ctx, session.UserID); err != nil {
			respondError(c, route, cartStoreError("clear cart", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
