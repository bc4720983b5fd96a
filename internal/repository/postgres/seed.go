// internal/repository/postgres/seed.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cashcard-api/internal/domain"
	"cashcard-api/pkg/db"
)

// Seed inserts users and cards with fixed ids in a single transaction and
// moves the id sequence past the highest seeded id. Rows that already exist
// are left untouched, so Seed can run on every start.
func Seed(ctx context.Context, beginner db.DBTxBeginner, users []domain.User, cards []domain.CashCard) error {
	err := db.RunInTx(ctx, beginner, func(tx *sqlx.Tx) error {
		for i := range users {
			if err := createUser(ctx, tx, &users[i]); err != nil {
				return err
			}
		}

		for _, card := range cards {
			query := `INSERT INTO cash_cards (id, amount, owner) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, query, card.ID, card.Amount, card.Owner); err != nil {
				return fmt.Errorf("failed to insert cash card %d: %w", card.ID, err)
			}
		}

		if len(cards) > 0 {
			query := `SELECT setval(pg_get_serial_sequence('cash_cards', 'id'), (SELECT COALESCE(MAX(id), 1) FROM cash_cards))`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to advance id sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
