package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
type TransactionManager interface {
	// ExecTx executes fn within a transaction. The transaction is stored in
	// the context handed to fn so repositories participate automatically.
	// Any error from fn rolls the transaction back.
	ExecTx(ctx context.Context, fn TxFn) error
}
