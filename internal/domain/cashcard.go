// internal/domain/cashcard.go
package domain

import (
	"github.com/shopspring/decimal" // For precise monetary values
)

// CashCard is a monetary record owned by a single user.
type CashCard struct {
	ID     int64           `db:"id" json:"id"`         // Primary key, BIGSERIAL in DB
	Amount decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(19, 2) in DB
	Owner  string          `db:"owner" json:"owner"`   // Username of the creator, never changes
}

// NewCashCard creates a CashCard owned by owner. The ID is assigned by the store.
func NewCashCard(owner string, amount decimal.Decimal) *CashCard {
	return &CashCard{
		Amount: amount,
		Owner:  owner,
	}
}

// OwnedBy reports whether the card belongs to username.
func (c *CashCard) OwnedBy(username string) bool {
	return c != nil && c.Owner == username
}
