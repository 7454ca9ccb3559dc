package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/ordering"
	"storefront/internal/store"
)

const queryTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logger.For(c).Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal",
			"message": "系統發生錯誤，請稍後再試",
		})
	}
}

func ensureStoreConnection(ctx context.Context, gw store.Gateway) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return gw.Ping(checkCtx)
}

// requestContext bounds one gateway round trip.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), queryTimeout)
}

func respondWithError(c *gin.Context, status int, route, code, message string) {
	log := logger.For(c).With(zap.String("route", route), zap.Int("status", status), zap.String("code", code))
	if status >= http.StatusInternalServerError {
		log.Error("returning error")
	} else {
		log.Info("returning error")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

type apiError struct {
	status  int
	code    string
	message string
}

var (
	errUnavailable = apiError{http.StatusServiceUnavailable, "persistence", "系統忙碌中，請稍後再試"}
	errInternal    = apiError{http.StatusInternalServerError, "internal", "系統發生錯誤，請稍後再試"}
)

// domainErrors maps every sentinel a handler may see to its response.
var domainErrors = []struct {
	target error
	resp   apiError
}{
	{store.ErrAuthenticationFailed, apiError{http.StatusUnauthorized, "authentication_failed", "用戶名、密碼或角色不正確"}},
	{ordering.ErrInvalidTransition, apiError{http.StatusConflict, "invalid_transition", "訂單狀態無法變更"}},
	{store.ErrStatusConflict, apiError{http.StatusConflict, "status_conflict", "訂單狀態已被更新，請重新整理"}},
	{ordering.ErrEmptyCart, apiError{http.StatusBadRequest, "empty_cart", "購物車是空的"}},
	{ordering.ErrMissingSelection, apiError{http.StatusBadRequest, "missing_selection", "請選擇取餐時間和付款方式"}},
	{ordering.ErrInvalidPickupTime, apiError{http.StatusBadRequest, "invalid_pickup_time", "取餐時間無效"}},
	{ordering.ErrInvalidQuantity, apiError{http.StatusBadRequest, "invalid_quantity", "數量無效"}},
	{ordering.ErrItemUnavailable, apiError{http.StatusConflict, "item_unavailable", "此餐點目前無法供應"}},
	{ordering.ErrNoPickupOptions, apiError{http.StatusBadRequest, "no_pickup_options", "至少需要一個取餐時間選項"}},
	{errCheckoutInProgress, apiError{http.StatusConflict, "checkout_in_progress", "訂單處理中，請稍候再試"}},
	{store.ErrNotFound, apiError{http.StatusNotFound, "not_found", "找不到資料"}},
}

func classify(err error) apiError {
	for _, known := range domainErrors {
		if errors.Is(err, known.target) {
			return known.resp
		}
	}
	var persistenceErr *store.PersistenceError
	if errors.As(err, &persistenceErr) {
		return errUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errUnavailable
	}
	return errInternal
}

// respondError renders err through the domain error table. Typed errors
// that name a menu item carry its id in the body.
func respondError(c *gin.Context, route string, err error) {
	resp := classify(err)
	log := logger.For(c).With(
		zap.String("route", route),
		zap.Int("status", resp.status),
		zap.String("code", resp.code),
		zap.Error(err),
	)
	if resp.status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Info("request rejected")
	}

	body := gin.H{"error": resp.code, "message": resp.message}

	var quantityErr *ordering.QuantityError
	if errors.As(err, &quantityErr) {
		body["menu_item_id"] = quantityErr.MenuItemID
		body["quantity"] = quantityErr.Quantity
	}
	var unavailableErr *ordering.UnavailableError
	if errors.As(err, &unavailableErr) {
		body["menu_item_id"] = unavailableErr.MenuItemID
	}
	var transitionErr *ordering.TransitionError
	if errors.As(err, &transitionErr) {
		body["from"] = transitionErr.From
		body["to"] = transitionErr.To
	}

	c.AbortWithStatusJSON(resp.status, body)
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := snakeCase(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		logger.For(c).Info("validation failed", zap.String("route", route), zap.Strings("details", details))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "輸入資料有誤",
			"details": details,
		})
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "invalid_body", "請求格式錯誤")
}

func snakeCase(field string) string {
	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			acronymEnd := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// currentSession is only empty when a route is mounted without AuthGuard.
func currentSession(c *gin.Context, route string) (middleware.Session, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized", "請先登入")
		return middleware.Session{}, false
	}
	return session, true
}

func sanitizeLogValue(value string, max int) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	if max > 0 && len([]rune(value)) > max {
		return string([]rune(value)[:max]) + "..."
	}
	return value
}
