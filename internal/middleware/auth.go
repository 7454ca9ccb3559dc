package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/models"
)

// AuthGuard rejects requests without a valid bearer token and, when roles
// are given, callers whose role is not among them.
func AuthGuard(secret string, allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed bearer token")
			return
		}

		session, err := ParseToken(raw, secret)
		if err != nil {
			logger.For(c).Warn("token validation failed", zap.Error(err))
			abortUnauthorized(c, "token validation failed")
			return
		}

		if len(allowedRoles) > 0 && !hasRole(session.Role, allowedRoles) {
			logger.For(c).Warn("role not allowed",
				zap.String("user_id", session.UserID),
				zap.String("role", string(session.Role)),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "您沒有權限執行此操作",
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func CustomerOnly(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleCustomer)
}

// StaffOrManager admits both roles that work the order queue.
func StaffOrManager(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleStaff, models.RoleManager)
}

func ManagerOnly(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleManager)
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, reason string) {
	logger.For(c).Debug("unauthorized request", zap.String("reason", reason))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "請先登入",
	})
}
