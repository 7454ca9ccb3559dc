package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

// IdempotencyHeader lets a client retry a checkout without placing the
// order twice.
const IdempotencyHeader = "Idempotency-Key"

type CheckoutRequest struct {
	PickupTime    string `json:"pickup_time"`
	PaymentMethod string `json:"payment_method"`
}

// checkoutReservation bounds how long a crashed checkout can hold its
// idempotency key.
const checkoutReservation = time.Minute

var errCheckoutInProgress = errors.New("checkout with this idempotency key is still running")

// Checkout turns the caller's cart into a pending order. The cart is only
// cleared once the order is stored; a rejected checkout leaves it as is.
//
// With an Idempotency-Key the key is reserved before anything is written,
// so concurrent retries place at most one order. A failed checkout releases
// the key again.
func Checkout(gw store.Gateway, carts cart.Store, publisher events.Publisher, idempotencyTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /customer/orders"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		idemKey := ""
		if raw := strings.TrimSpace(c.GetHeader(IdempotencyHeader)); raw != "" {
			idemKey = session.UserID + ":" + raw
			orderID, reserved, err := carts.ReserveIdempotency(ctx, idemKey, checkoutReservation)
			if err != nil {
				respondError(c, route, cartStoreError("reserve idempotency key", err))
				return
			}
			if !reserved {
				replayCheckout(ctx, c, route, gw, orderID)
				return
			}
		}

		order, err := placeOrder(ctx, gw, carts, session.UserID, req)
		if err != nil {
			if idemKey != "" {
				if releaseErr := carts.ReleaseIdempotency(ctx, idemKey); releaseErr != nil {
					logger.For(c).Warn("idempotency key not released", zap.Error(releaseErr))
				}
			}
			respondError(c, route, err)
			return
		}

		log := logger.For(c).With(zap.String("order_id", order.ID), zap.String("user_id", order.UserID))
		if err := carts.Delete(ctx, session.UserID); err != nil {
			log.Warn("order stored but cart not cleared", zap.Error(err))
		}
		if idemKey != "" {
			if err := carts.SetIdempotency(ctx, idemKey, order.ID, idempotencyTTL); err != nil {
				log.Warn("idempotency key not recorded", zap.Error(err))
			}
		}
		publish(ctx, c, publisher, events.OrderPlaced(order))

		log.Info("order created", zap.String("total", order.Total.String()), zap.Int("items", len(order.Items)))
		c.JSON(http.StatusCreated, order)
	}
}

// replayCheckout answers a repeated key with the order it already placed.
// An empty orderID means the first request has not finished yet.
func replayCheckout(ctx context.Context, c *gin.Context, route string, gw store.Gateway, orderID string) {
	if orderID == "" {
		respondError(c, route, errCheckoutInProgress)
		return
	}
	order, err := gw.GetOrder(ctx, orderID)
	if err != nil {
		respondError(c, route, err)
		return
	}
	logger.For(c).Info("checkout replayed", zap.String("order_id", orderID))
	c.JSON(http.StatusOK, order)
}

func placeOrder(ctx context.Context, gw store.Gateway, carts cart.Store, userID string, req CheckoutRequest) (models.Order, error) {
	current, err := carts.Get(ctx, userID)
	if err != nil {
		return models.Order{}, cartStoreError("load cart", err)
	}

	options, err := gw.ListActivePickupOptions(ctx)
	if err != nil {
		return models.Order{}, err
	}

	draft, err := ordering.BuildOrder(current.Lines, req.PickupTime, req.PaymentMethod, options)
	if err != nil {
		return models.Order{}, err
	}
	draft.UserID = userID

	return gw.CreateOrder(ctx, draft)
}

func GetMyOrders(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customer/orders"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := gw.ListOrdersForUser(ctx, session.UserID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// CancelMyOrder lets a customer cancel one of their own pending orders.
// Orders of other customers are reported as missing.
func CancelMyOrder(gw store.Gateway, publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /customer/orders/:id/cancel"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := gw.GetOrder(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		if order.UserID != session.UserID {
			respondError(c, route, store.ErrNotFound)
			return
		}

		updated, err := applyTransition(ctx, gw, order, models.StatusCancelled, session.Role)
		if err != nil {
			respondError(c, route, err)
			return
		}
		publish(ctx, c, publisher, events.StatusChanged(updated, order.Status, session.Role))
		c.JSON(http.StatusOK, updated)
	}
}

// applyTransition validates the move with the engine and then writes it
// only if nobody changed the status in between.
func applyTransition(ctx context.Context, gw store.Gateway, order models.Order, target models.OrderStatus, actor models.Role) (models.Order, error) {
	if _, err := ordering.Transition(order, target, actor, time.Now()); err != nil {
		return models.Order{}, err
	}
	return gw.UpdateOrderStatus(ctx, order.ID, order.Status, target)
}

// publish never fails the request: the order write has already committed.
func publish(ctx context.Context, c *gin.Context, publisher events.Publisher, event events.OrderEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.For(c).Warn("order event not published",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
