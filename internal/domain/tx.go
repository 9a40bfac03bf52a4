package domain

import "context"

// TxRunner runs a function inside a database transaction. Repository calls
// made by the function join the transaction through the context.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
