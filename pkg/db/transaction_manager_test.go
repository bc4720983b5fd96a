// pkg/db/transaction_manager_test.go
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTx(t *testing.T) {
	t.Run("Commits", func(t *testing.T) {
		raw, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer raw.Close()
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE cash_cards`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = RunInTx(context.Background(), sqlx.NewDb(raw, "sqlmock"), func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(context.Background(), `UPDATE cash_cards SET amount = 1`)
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBack", func(t *testing.T) {
		raw, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer raw.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()
		boom := errors.New("boom")

		err = RunInTx(context.Background(), sqlx.NewDb(raw, "sqlmock"), func(*sqlx.Tx) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFails", func(t *testing.T) {
		raw, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer raw.Close()
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err = RunInTx(context.Background(), sqlx.NewDb(raw, "sqlmock"), func(*sqlx.Tx) error {
			t.Fatal("fn must not run")
			return nil
		})

		assert.ErrorContains(t, err, "begin transaction")
	})
}
