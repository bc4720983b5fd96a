// internal/repository/cashcard_repo.go
package repository

import (
	"context"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/paging"

	"github.com/shopspring/decimal"
)

// CashCardRepository defines owner-scoped cash card storage.
// Every lookup and mutation takes the owner so that a card belonging to
// somebody else is indistinguishable from a missing one (util.ErrNotFound).
type CashCardRepository interface {
	// CreateCashCard stores card and fills in its ID.
	CreateCashCard(ctx context.Context, card *domain.CashCard) error
	// GetCashCard returns the card with id if owner owns it.
	GetCashCard(ctx context.Context, id int64, owner string) (*domain.CashCard, error)
	// ListCashCards returns one page of owner's cards.
	ListCashCards(ctx context.Context, owner string, page paging.Request) ([]domain.CashCard, error)
	// UpdateCashCardAmount replaces the amount of an owned card.
	UpdateCashCardAmount(ctx context.Context, id int64, owner string, amount decimal.Decimal) error
	// DeleteCashCard removes an owned card.
	DeleteCashCard(ctx context.Context, id int64, owner string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
