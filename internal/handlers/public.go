package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

func Health(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureStoreConnection(c.Request.Context(), gw); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// GetMenu lists the menu by category then name. Unavailable items stay in
// the list unless ?available=true is given.
func GetMenu(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu"
		defer handlePanic(c, route)

		onlyAvailable := false
		if raw := strings.TrimSpace(c.Query("available")); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid_query", "available 必須是布林值")
				return
			}
			onlyAvailable = parsed
		}

		category := strings.TrimSpace(c.Query("category"))

		ctx, cancel := requestContext(c)
		defer cancel()

		items, err := gw.ListMenuItems(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		filtered := make([]models.MenuItem, 0, len(items))
		for _, item := range items {
			if onlyAvailable && !item.Available {
				continue
			}
			if category != "" && item.Category != category {
				continue
			}
			filtered = append(filtered, item)
		}
		c.JSON(http.StatusOK, filtered)
	}
}

func GetSettings(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /settings"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		settings, err := gw.GetBusinessSettings(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

type PickupOptionsResponse struct {
	Options        []models.PickupTimeOption `json:"options"`
	PaymentMethods []string                  `json:"payment_methods"`
}

// GetPickupOptions returns what the checkout form offers.
func GetPickupOptions(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /pickup-options"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		options, err := gw.ListActivePickupOptions(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, PickupOptionsResponse{Options: options, PaymentMethods: ordering.PaymentMethods})
	}
}
