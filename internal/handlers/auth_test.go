package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/middleware"
	"storefront/internal/models"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/login", "", gin.H{"username": "sam", "password": "sam-pw", "role": "staff"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[LoginResponse](t, w)
	assert.Equal(t, "sam", resp.User.Username)
	assert.Equal(t, models.RoleStaff, resp.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	session, err := middleware.ParseToken(resp.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, env.users["sam"].ID, session.UserID)
	assert.Equal(t, models.RoleStaff, session.Role)
}

func TestLoginRejectsWrongTriple(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "wrong password", body: gin.H{"username": "sam", "password": "nope", "role": "staff"}},
		{name: "wrong role", body: gin.H{"username": "sam", "password": "sam-pw", "role": "manager"}},
		{name: "unknown user", body: gin.H{"username": "zed", "password": "zed-pw", "role": "customer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/auth/login", "", tt.body)
			body := requireError(t, w, http.StatusUnauthorized, "authentication_failed")
			assert.Equal(t, "用戶名、密碼或角色不正確", body.Message)
		})
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/login", "", gin.H{"username": "sam", "password": "x", "role": "admin"})
	requireError(t, w, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, w.Body.String(), "role is invalid")

	w = env.do(http.MethodPost, "/auth/login", "", gin.H{"password": "x", "role": "staff"})
	assert.Contains(t, w.Body.String(), "username is required")
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/auth/me", "megan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[models.User](t, w)
	assert.Equal(t, models.RoleManager, user.Role)

	w = env.do(http.MethodGet, "/auth/me", "", nil)
	requireError(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestRoleGuards(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/staff/orders", "amy", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/manager/stats", "sam", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/customer/cart", "sam", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/staff/orders", "megan", nil).Code)
}
