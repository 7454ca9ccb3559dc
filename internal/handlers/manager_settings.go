package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

type UpdateSettingsRequest struct {
	OpenTime  *string `json:"open_time" binding:"omitempty,datetime=15:04"`
	CloseTime *string `json:"close_time" binding:"omitempty,datetime=15:04"`
	IsOpen    *bool   `json:"is_open"`
}

type ReplacePickupOptionsRequest struct {
	Options []string `json:"options" binding:"required"`
}

func UpdateSettings(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /manager/settings"
		defer handlePanic(c, route)

		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		patch := models.BusinessSettingsPatch{OpenTime: req.OpenTime, CloseTime: req.CloseTime, IsOpen: req.IsOpen}
		if patch.Empty() {
			respondWithError(c, http.StatusBadRequest, route, "invalid_settings", "沒有要更新的欄位")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		settings, err := gw.UpdateBusinessSettings(ctx, patch)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("business settings updated",
			zap.String("open_time", settings.OpenTime),
			zap.String("close_time", settings.CloseTime),
			zap.Bool("is_open", settings.IsOpen),
		)
		c.JSON(http.StatusOK, settings)
	}
}

// ReplacePickupOptions swaps the whole active option set. An empty result
// is refused because it would leave customers unable to check out.
func ReplacePickupOptions(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /manager/pickup-options"
		defer handlePanic(c, route)

		var req ReplacePickupOptionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		current, err := gw.ListActivePickupOptions(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		replacement := ordering.ReplacePickupOptions(current, req.Options)
		if len(replacement.Created) == 0 {
			respondError(c, route, ordering.ErrNoPickupOptions)
			return
		}

		created, err := gw.ReplacePickupOptions(ctx, replacement.Created)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("pickup options replaced",
			zap.Int("retired", len(replacement.Retired)),
			zap.Int("created", len(created)),
		)
		c.JSON(http.StatusOK, created)
	}
}

// GetStats summarizes one calendar day in the store's time zone, today by
// default.
func GetStats(gw store.Gateway, loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /manager/stats"
		defer handlePanic(c, route)

		ref := time.Now().In(loc)
		if raw := strings.TrimSpace(c.Query("date")); raw != "" {
			parsed, err := time.ParseInLocation(time.DateOnly, raw, loc)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid_date", "日期格式應為 YYYY-MM-DD")
				return
			}
			ref = parsed
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := gw.ListOrders(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, ordering.DailyStats(orders, ref))
	}
}
