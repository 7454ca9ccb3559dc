package store

import (
	"context"
	"errors"

	"storefront/internal/models"
)

// DemoAccount is a login created by SeedUsers.
type DemoAccount struct {
	Username string
	Password string
	Role     models.Role
	Name     string
}

var DemoAccounts = []DemoAccount{
	{Username: "customer", Password: "customer123", Role: models.RoleCustomer, Name: "示範顧客"},
	{Username: "staff", Password: "staff123", Role: models.RoleStaff, Name: "示範店員"},
	{Username: "manager", Password: "manager123", Role: models.RoleManager, Name: "示範店長"},
}

// SeedUsers creates every account that cannot log in yet and reports how
// many were created.
func SeedUsers(ctx context.Context, gw Gateway, accounts []DemoAccount) (int, error) {
	created := 0
	for _, account := range accounts {
		_, err := gw.Authenticate(ctx, account.Username, account.Password, account.Role)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrAuthenticationFailed) {
			return created, err
		}

		user := models.User{Username: account.Username, Role: account.Role, Name: account.Name}
		if _, err := gw.CreateUser(ctx, user, account.Password); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
