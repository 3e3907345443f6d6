package repositories

import "context"

// TxFn runs with a context that carries the open transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically. Calls made while a
// transaction is already open join it.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
