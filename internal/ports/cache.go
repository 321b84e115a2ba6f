package ports

import (
	"context"
	"time"
)

// Cache is a small key-value store for usecase bookkeeping such as the last
// import summary. Adapters may be backed by SQLite or another store.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
