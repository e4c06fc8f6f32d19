// Package dbx holds the small database/sql helpers shared by the local
// cache repository and the Postgres adapter.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the part of database/sql the repositories use. *sql.DB and
// *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the body of a transaction.
type TxFunc func(ctx context.Context, tx DBTX) error

// WithTx runs fn inside a transaction: commit when fn returns nil, rollback
// on error or panic. Panics are re-raised after the rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) error {
	return WithScopedTx(ctx, db, opts, nil, fn)
}

// WithScopedTx is WithTx with a prologue. scope runs first on the same
// transaction (SET LOCAL, set_config and the like); if it fails, fn is not
// called and the transaction is rolled back.
func WithScopedTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, scope TxFunc, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if scope != nil {
		if err = scope(ctx, tx); err != nil {
			return err
		}
	}

	err = fn(ctx, tx)
	return err
}
