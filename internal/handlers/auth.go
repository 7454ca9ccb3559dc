package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=customer staff manager"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

// Login checks the (username, password, role) triple and issues an access
// token carrying the role.
func Login(gw store.Gateway, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		username := strings.TrimSpace(req.Username)

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := gw.Authenticate(ctx, username, req.Password, models.Role(req.Role))
		if err != nil {
			logger.For(c).Info("login failed",
				zap.String("username", sanitizeLogValue(username, 64)),
				zap.String("role", req.Role),
			)
			respondError(c, route, err)
			return
		}

		token, expiresAt, err := middleware.IssueToken(user, jwtSecret, accessTTL, time.Now())
		if err != nil {
			respondError(c, route, err)
			return
		}

		logger.For(c).Info("login succeeded", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
		c.JSON(http.StatusOK, LoginResponse{AccessToken: token, ExpiresAt: expiresAt, User: user})
	}
}

func Me(gw store.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		session, ok := currentSession(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := gw.GetUser(ctx, session.UserID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
