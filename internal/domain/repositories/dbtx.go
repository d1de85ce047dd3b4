package repositories

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql that both *sql.DB and *sql.Tx
// implement. Repositories work against it so the same code runs inside and
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txContextKey is the type for transaction context keys.
type txContextKey string

const txKey txContextKey = "sql_tx"

// SetTx stores a transaction in the context.
func SetTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTx retrieves a transaction from the context, or nil when absent.
func GetTx(ctx context.Context) *sql.Tx {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	if !ok {
		return nil
	}
	return tx
}
