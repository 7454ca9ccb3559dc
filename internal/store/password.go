package store

import (
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// matchSingleUser returns the only candidate whose hash matches password.
// Zero or several matches fail authentication.
func matchSingleUser(candidates []models.User, password string) (models.User, error) {
	var (
		matched models.User
		count   int
	)
	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(password)) == nil {
			matched = candidate
			count++
		}
	}
	if count != 1 {
		return models.User{}, ErrAuthenticationFailed
	}
	return matched, nil
}
