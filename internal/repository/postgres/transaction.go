package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager manages database transactions
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// readCommitted is the isolation the chat writes rely on: each statement
// sees rows committed before it started.
var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// WithTx executes fn within a database transaction started with opts.
// A nil opts uses the driver default.
// If fn returns an error, or ctx is cancelled before commit, the transaction
// is rolled back. Otherwise it is committed.
func (tm *TxManager) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	tx, err := tm.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
