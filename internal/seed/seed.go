// internal/seed/seed.go
package seed

import (
	"fmt"

	"cashcard-api/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Credential is a demo account in plain text, hashed before it is stored.
type Credential struct {
	Username string
	Password string
	Roles    []string
}

// DemoCredentials returns the demo accounts.
func DemoCredentials() []Credential {
	return []Credential{
		{Username: "sarah1", Password: "abc123", Roles: []string{domain.RoleCardOwner}},
		{Username: "john2", Password: "xyz789", Roles: []string{domain.RoleCardOwner}},
		{Username: "hank-owns-no-cards", Password: "qrs456", Roles: []string{"NON-OWNER"}},
	}
}

// DemoUsers hashes DemoCredentials with the given bcrypt cost.
func DemoUsers(cost int) ([]domain.User, error) {
	creds := DemoCredentials()
	users := make([]domain.User, 0, len(creds))
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", c.Username, err)
		}
		users = append(users, *domain.NewUser(c.Username, hash, c.Roles...))
	}
	return users, nil
}

// DemoCashCards returns the demo cards: three owned by sarah1, one by john2.
func DemoCashCards() []domain.CashCard {
	return []domain.CashCard{
		{ID: 99, Amount: decimal.RequireFromString("123.45"), Owner: "sarah1"},
		{ID: 100, Amount: decimal.RequireFromString("1.00"), Owner: "sarah1"},
		{ID: 101, Amount: decimal.RequireFromString("150.00"), Owner: "sarah1"},
		{ID: 102, Amount: decimal.RequireFromString("200.00"), Owner: "john2"},
	}
}
