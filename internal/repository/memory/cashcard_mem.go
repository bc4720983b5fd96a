// internal/repository/memory/cashcard_mem.go
package memory

import (
	"context"
	"sync"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/paging"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"

	"github.com/shopspring/decimal"
)

// CashCardRepository is an in-memory repository.CashCardRepository used for
// local development and tests.
type CashCardRepository struct {
	mu     sync.RWMutex
	cards  map[int64]domain.CashCard
	nextID int64
}

var _ repository.CashCardRepository = (*CashCardRepository)(nil)

// NewCashCardRepository builds a store pre-loaded with seed. New ids
// continue after the highest seeded id.
func NewCashCardRepository(seed ...domain.CashCard) *CashCardRepository {
	r := &CashCardRepository{
		cards:  make(map[int64]domain.CashCard, len(seed)),
		nextID: 1,
	}
	for _, card := range seed {
		r.cards[card.ID] = card
		if card.ID >= r.nextID {
			r.nextID = card.ID + 1
		}
	}
	return r
}

func (r *CashCardRepository) CreateCashCard(_ context.Context, card *domain.CashCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card.ID = r.nextID
	r.nextID++
	r.cards[card.ID] = *card
	return nil
}

func (r *CashCardRepository) GetCashCard(_ context.Context, id int64, owner string) (*domain.CashCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[id]
	if !ok || !card.OwnedBy(owner) {
		return nil, util.ErrNotFound
	}
	return &card, nil
}

func (r *CashCardRepository) ListCashCards(_ context.Context, owner string, page paging.Request) ([]domain.CashCard, error) {
	r.mu.RLock()
	owned := make([]domain.CashCard, 0, len(r.cards))
	for _, card := range r.cards {
		if card.Owner == owner {
			owned = append(owned, card)
		}
	}
	r.mu.RUnlock()

	return page.Apply(owned), nil
}

func (r *CashCardRepository) UpdateCashCardAmount(_ context.Context, id int64, owner string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok || !card.OwnedBy(owner) {
		return util.ErrNotFound
	}
	card.Amount = amount
	r.cards[id] = card
	return nil
}

func (r *CashCardRepository) DeleteCashCard(_ context.Context, id int64, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok || !card.OwnedBy(owner) {
		return util.ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *CashCardRepository) Ping(context.Context) error { return nil }
