// internal/service/cashcard_service.go
package service

import (
	"context"
	"fmt"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/paging"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"

	"github.com/shopspring/decimal"
)

// CashCardService defines the owner-scoped cash card operations.
type CashCardService interface {
	ListCashCards(ctx context.Context, owner string, page paging.Request) ([]domain.CashCard, error)
	GetCashCard(ctx context.Context, owner string, id int64) (*domain.CashCard, error)
	CreateCashCard(ctx context.Context, owner string, amount decimal.Decimal) (*domain.CashCard, error)
	UpdateCashCard(ctx context.Context, owner string, id int64, amount decimal.Decimal) error
	DeleteCashCard(ctx context.Context, owner string, id int64) error
}

// cashCardService implements the CashCardService interface.
type cashCardService struct {
	cashCardRepo repository.CashCardRepository
}

// NewCashCardService creates a new instance of CashCardService.
func NewCashCardService(cashCardRepo repository.CashCardRepository) CashCardService {
	return &cashCardService{cashCardRepo: cashCardRepo}
}

// ListCashCards returns one page of the owner's cards.
func (s *cashCardService) ListCashCards(ctx context.Context, owner string, page paging.Request) ([]domain.CashCard, error) {
	if owner == "" {
		return nil, util.ErrUnauthenticated
	}
	cards, err := s.cashCardRepo.ListCashCards(ctx, owner, page)
	if err != nil {
		return nil, fmt.Errorf("list cash cards: %w", err)
	}
	return cards, nil
}

// GetCashCard returns a card only when owner owns it.
func (s *cashCardService) GetCashCard(ctx context.Context, owner string, id int64) (*domain.CashCard, error) {
	if owner == "" {
		return nil, util.ErrUnauthenticated
	}
	// Ids start at 1; nothing to look up otherwise.
	if id <= 0 {
		return nil, util.ErrNotFound
	}
	card, err := s.cashCardRepo.GetCashCard(ctx, id, owner)
	if err != nil {
		return nil, fmt.Errorf("get cash card %d: %w", id, err)
	}
	return card, nil
}

// CreateCashCard stores a new card for owner and returns it with its id.
func (s *cashCardService) CreateCashCard(ctx context.Context, owner string, amount decimal.Decimal) (*domain.CashCard, error) {
	if owner == "" {
		return nil, util.ErrUnauthenticated
	}
	card := domain.NewCashCard(owner, amount)
	if err := s.cashCardRepo.CreateCashCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create cash card: %w", err)
	}
	return card, nil
}

// UpdateCashCard replaces the amount of an owned card.
func (s *cashCardService) UpdateCashCard(ctx context.Context, owner string, id int64, amount decimal.Decimal) error {
	if owner == "" {
		return util.ErrUnauthenticated
	}
	if id <= 0 {
		return util.ErrNotFound
	}
	if err := s.cashCardRepo.UpdateCashCardAmount(ctx, id, owner, amount); err != nil {
		return fmt.Errorf("update cash card %d: %w", id, err)
	}
	return nil
}

// DeleteCashCard removes an owned card.
func (s *cashCardService) DeleteCashCard(ctx context.Context, owner string, id int64) error {
	if owner == "" {
		return util.ErrUnauthenticated
	}
	if id <= 0 {
		return util.ErrNotFound
	}
	if err := s.cashCardRepo.DeleteCashCard(ctx, id, owner); err != nil {
		return fmt.Errorf("delete cash card %d: %w", id, err)
	}
	return nil
}
