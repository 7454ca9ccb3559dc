package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

// StaffOrder is an order with the statuses the caller may move it to.
type StaffOrder struct {
	models.Order
	NextStatuses []models.OrderStatus `json:"next_statuses"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// parseStatusFilter reads ?status=. An empty value means all statuses.
func parseStatusFilter(c *gin.Context, route string) (models.OrderStatus, bool) {
	status := models.OrderStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		respondWithError(c, http.StatusBadRequest, route, "invalid_status", "訂單狀態無效")
		return "", false
	}
	return status, true
}

func filterByStatus(orders []models.Order, status models.OrderStatus) []models.Order {
	if status == "" {
		return orders
	}
	filtered := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == status {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

// ListStaffOrders is the order queue, newest first.
func ListStaffOrders(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /staff/orders"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}
		status, ok := parseStatusFilter(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := gw.ListOrders(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		orders = filterByStatus(orders, status)
		queue := make([]StaffOrder, 0, len(orders))
		for _, order := range orders {
			queue = append(queue, StaffOrder{
				Order:        order,
				NextStatuses: ordering.NextStatuses(order.Status, session.Role),
			})
		}
		c.JSON(http.StatusOK, queue)
	}
}

// UpdateOrderStatus moves an order one step along the workflow or rejects
// it.
func UpdateOrderStatus(gw store.Gateway, publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /staff/orders/:id/status"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		target := models.OrderStatus(strings.TrimSpace(req.Status))
		if !target.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "invalid_status", "訂單狀態無效")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := gw.GetOrder(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		updated, err := applyTransition(ctx, gw, order, target, session.Role)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("order status changed",
			zap.String("order_id", updated.ID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(updated.Status)),
			zap.String("actor", session.UserID),
		)
		publish(ctx, c, publisher, events.StatusChanged(updated, order.Status, session.Role))
		c.JSON(http.StatusOK, StaffOrder{
			Order:        updated,
			NextStatuses: ordering.NextStatuses(updated.Status, session.Role),
		})
	}
}

// ListAllOrders is the manager's order history with optional status filter
// and pagination. The unpaginated total goes in X-Total-Count.
func ListAllOrders(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /manager/orders"
		defer handlePanic(c, route)

		status, ok := parseStatusFilter(c, route)
		if !ok {
			return
		}
		page, limit, paginate, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid_pagination", "分頁參數無效")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := gw.ListOrders(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		orders = filterByStatus(orders, status)
		c.Header("X-Total-Count", strconv.Itoa(len(orders)))
		if paginate {
			start, end := pageBounds(len(orders), page, limit)
			orders = orders[start:end]
		}
		c.JSON(http.StatusOK, orders)
	}
}
