package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/models"
)

const sessionKey = "session"

// Session is the authenticated caller. The role is fixed at login and
// checked by the server on every request.
type Session struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
}

type sessionClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 access token for user that expires after ttl.
func IssueToken(user models.User, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		Role: string(user.Role),
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies raw and returns the session it carries.
func ParseToken(raw, secret string) (Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, err
	}
	if !token.Valid {
		return Session{}, errInvalidToken
	}

	role := models.Role(claims.Role)
	if strings.TrimSpace(claims.Subject) == "" || !role.Valid() {
		return Session{}, errInvalidToken
	}
	return Session{UserID: claims.Subject, Role: role, Name: claims.Name}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) (string, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", false
	}
	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SessionFrom returns the session AuthGuard stored on c.
func SessionFrom(c *gin.Context) (Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	session, ok := value.(Session)
	return session, ok
}
