// Package store persists contacts and users in MySQL through sqlx. All exported methods take the
// caller's context and return *model.StorageError for failures of the database layer.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
)

// withTx runs fn inside a transaction. The transaction is committed if fn succeeds and rolled
// back otherwise, so callers never observe a partial write.
func withTx(ctx context.Context, db *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return model.NewStorageError(op, fmt.Errorf("begin: %w", err))
	}
	if err := fn(tx); err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", errRollback))
		}
		return model.NewStorageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return model.NewStorageError(op, fmt.Errorf("commit: %w", err))
	}
	return nil
}
