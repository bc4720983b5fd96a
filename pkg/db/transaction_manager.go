// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// TxController is the commit/rollback half of a transaction. *sqlx.Tx
// satisfies it.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner starts transactions. *sqlx.DB satisfies it.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// BeginTx starts a new database transaction.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (*sqlx.Tx, error) {
	return dbConn.BeginTxx(ctx, nil)
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. Meant to be deferred: a transaction
// that was already committed is not an error.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Default().Error("Error rolling back transaction", "error", err)
	}
}

// RunInTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func RunInTx(ctx context.Context, dbConn DBTxBeginner, fn func(tx *sqlx.Tx) error) error {
	tx, err := BeginTx(ctx, dbConn)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer RollbackTx(tx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := CommitTx(tx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
