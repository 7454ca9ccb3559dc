package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/store"
)

// An image is kept as a plain URL or an inline data URL.
type CreateMenuItemRequest struct {
	Name        string        `json:"name" binding:"required"`
	Price       *models.Money `json:"price" binding:"required"`
	Category    string        `json:"category" binding:"required"`
	Description string        `json:"description"`
	Available   *bool         `json:"available"`
	ImageURL    string        `json:"image_url" binding:"omitempty,url|datauri"`
}

type UpdateMenuItemRequest struct {
	Name        *string       `json:"name"`
	Price       *models.Money `json:"price"`
	Category    *string       `json:"category"`
	Description *string       `json:"description"`
	Available   *bool         `json:"available"`
	ImageURL    *string       `json:"image_url" binding:"omitempty,url|datauri"`
}

func invalidMenuItem(c *gin.Context, route, reason string) {
	logger.For(c).Info("menu item rejected", zap.String("route", route), zap.String("reason", reason))
	respondWithError(c, http.StatusBadRequest, route, "invalid_menu_item", reason)
}

// priceProblem rejects prices the stores would round or overflow.
func priceProblem(price models.Money) string {
	switch {
	case price.IsNegative():
		return "價格不可為負數"
	case !price.HasPriceScale():
		return "價格最多只能有兩位小數"
	case price.GreaterThan(models.MaxPrice.Decimal):
		return "價格超出上限"
	}
	return ""
}

func (r CreateMenuItemRequest) toMenuItem() (models.MenuItem, string) {
	name := strings.TrimSpace(r.Name)
	category := strings.TrimSpace(r.Category)
	if name == "" {
		return models.MenuItem{}, "名稱不可為空白"
	}
	if category == "" {
		return models.MenuItem{}, "分類不可為空白"
	}
	if reason := priceProblem(*r.Price); reason != "" {
		return models.MenuItem{}, reason
	}

	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return models.MenuItem{
		Name:        name,
		Price:       *r.Price,
		Category:    category,
		Description: strings.TrimSpace(r.Description),
		Available:   available,
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}, ""
}

func (r UpdateMenuItemRequest) toPatch() (models.MenuItemPatch, string) {
	patch := models.MenuItemPatch{
		Price:     r.Price,
		Available: r.Available,
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return patch, "名稱不可為空白"
		}
		patch.Name = &name
	}
	if r.Category != nil {
		category := strings.TrimSpace(*r.Category)
		if category == "" {
			return patch, "分類不可為空白"
		}
		patch.Category = &category
	}
	if r.Description != nil {
		description := strings.TrimSpace(*r.Description)
		patch.Description = &description
	}
	if r.ImageURL != nil {
		imageURL := strings.TrimSpace(*r.ImageURL)
		patch.ImageURL = &imageURL
	}
	if r.Price != nil {
		if reason := priceProblem(*r.Price); reason != "" {
			return patch, reason
		}
	}
	if patch.Empty() {
		return patch, "沒有要更新的欄位"
	}
	return patch, ""
}

func CreateMenuItem(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /manager/menu"
		defer handlePanic(c, route)

		var req CreateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		item, reason := req.toMenuItem()
		if reason != "" {
			invalidMenuItem(c, route, reason)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		created, err := gw.CreateMenuItem(ctx, item)
		if err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("menu item created",
			zap.String("id", created.ID),
			zap.String("name", sanitizeLogValue(created.Name, 80)),
		)
		c.JSON(http.StatusCreated, created)
	}
}

func UpdateMenuItem(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /manager/menu/:id"
		defer handlePanic(c, route)

		var req UpdateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		patch, reason := req.toPatch()
		if reason != "" {
			invalidMenuItem(c, route, reason)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		updated, err := gw.UpdateMenuItem(ctx, c.Param("id"), patch)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteMenuItem hard-deletes the item. Past order lines keep their price
// and lose the menu item join.
func DeleteMenuItem(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /manager/menu/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := gw.DeleteMenuItem(ctx, c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("menu item deleted", zap.String("id", c.Param("id")))
		c.Status(http.StatusNoContent)
	}
}
