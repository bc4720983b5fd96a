// internal/repository/postgres/cashcard_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/paging"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CashCardRepository implements repository.CashCardRepository for PostgreSQL.
type CashCardRepository struct {
	db *sqlx.DB
}

// NewCashCardRepository creates a new CashCardRepository.
func NewCashCardRepository(db *sqlx.DB) *CashCardRepository {
	return &CashCardRepository{db: db}
}

var _ repository.CashCardRepository = (*CashCardRepository)(nil)

// CreateCashCard inserts a new card and scans the generated id back into it.
func (r *CashCardRepository) CreateCashCard(ctx context.Context, card *domain.CashCard) error {
	query := `INSERT INTO cash_cards (amount, owner) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, card.Amount, card.Owner).Scan(&card.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cash card id already taken: %w", util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create cash card: %w", err)
	}
	return nil
}

// GetCashCard retrieves a card by id, restricted to owner.
func (r *CashCardRepository) GetCashCard(ctx context.Context, id int64, owner string) (*domain.CashCard, error) {
	var card domain.CashCard
	query := `SELECT id, amount, owner FROM cash_cards WHERE id = $1 AND owner = $2`
	if err := r.db.GetContext(ctx, &card, query, id, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cash card %d: %w", id, err)
	}
	return &card, nil
}

// ListCashCards retrieves one page of owner's cards. The ORDER BY list only
// ever contains whitelisted columns (see paging.Request.OrderBy).
func (r *CashCardRepository) ListCashCards(ctx context.Context, owner string, page paging.Request) ([]domain.CashCard, error) {
	cards := []domain.CashCard{}
	query := `SELECT id, amount, owner FROM cash_cards WHERE owner = $1 ORDER BY ` + page.OrderBy() + ` LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &cards, query, owner, page.Size, page.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list cash cards for %s: %w", owner, err)
	}
	return cards, nil
}

// UpdateCashCardAmount replaces the amount of an owned card.
func (r *CashCardRepository) UpdateCashCardAmount(ctx context.Context, id int64, owner string, amount decimal.Decimal) error {
	query := `UPDATE cash_cards SET amount = $1 WHERE id = $2 AND owner = $3`
	result, err := r.db.ExecContext(ctx, query, amount, id, owner)
	if err != nil {
		return fmt.Errorf("failed to update cash card %d: %w", id, err)
	}
	return expectOneRow(result, id)
}

// DeleteCashCard removes an owned card.
func (r *CashCardRepository) DeleteCashCard(ctx context.Context, id int64, owner string) error {
	query := `DELETE FROM cash_cards WHERE id = $1 AND owner = $2`
	result, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete cash card %d: %w", id, err)
	}
	return expectOneRow(result, id)
}

// Ping checks the connection.
func (r *CashCardRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// isUniqueViolation reports a Postgres unique_violation, which happens when
// the id sequence trails rows inserted with explicit ids.
func isUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == "23505"
}

func expectOneRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for cash card %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
