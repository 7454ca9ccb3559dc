package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

func userWithPassword(t *testing.T, id, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{ID: id, Username: "amy", Role: models.RoleCustomer, PasswordHash: string(hash)}
}

func TestMatchSingleUser(t *testing.T) {
	a := userWithPassword(t, "a", "secret")
	b := userWithPassword(t, "b", "other")

	user, err := matchSingleUser([]models.User{a, b}, "secret")
	require.NoError(t, err)
	assert.Equal(t, "a", user.ID)
}

func TestMatchSingleUserFailures(t *testing.T) {
	a := userWithPassword(t, "a", "secret")
	twin := userWithPassword(t, "b", "secret")

	tests := []struct {
		name       string
		candidates []models.User
		password   string
	}{
		{name: "no candidates", candidates: nil, password: "secret"},
		{name: "wrong password", candidates: []models.User{a}, password: "nope"},
		{name: "ambiguous match", candidates: []models.User{a, twin}, password: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := matchSingleUser(tt.candidates, tt.password)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := hashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}
