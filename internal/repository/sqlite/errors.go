package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Yuuso/mossy/internal/domain"
)

// isNoRowsError checks if error is a "no rows" error.
func isNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// requireOneRow verifies a mutation affected exactly one row. Zero rows is
// domain.ErrNotFound; more than one means a prior corruption and is
// domain.ErrInconsistent, aborting the enclosing transaction.
func requireOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: op, ID: id, Err: err}
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s (id=%d): %w", op, id, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s (id=%d): %d rows affected: %w", op, id, n, domain.ErrInconsistent)
	}
}
