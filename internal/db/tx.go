package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// WithTx runs fn inside a transaction, committing if it returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, database *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = fn(tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}
