package ports

import "context"

// Tx is an opaque transaction handle. Infrastructure owns the concrete type
// (*gorm.DB for the SQLite adapter).
type Tx interface{}

// UnitOfWork is a callback-style transaction boundary: a non-nil error from
// fn rolls back, nil commits.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// WithTxContext stores a transaction handle in ctx.
func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the handle stored by WithTxContext, or nil.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
