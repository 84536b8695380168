// Package dbx holds the small database plumbing the repositories share: the
// handle they are bound to, and a transaction wrapper for read-then-write
// sequences that must see a single snapshot.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql the folder, file and user repositories
// use. Both *sql.DB and *sql.Tx satisfy it, so the same repository code runs
// against the connection pool or inside one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db: commit when fn returns nil,
// rollback when it returns an error or panics (the panic is rethrown).
//
// The folder move guard is the main caller — its ancestor walk and the
// reparent update must not interleave with a concurrent move, or two racing
// sessions could stitch the tree into a cycle.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
