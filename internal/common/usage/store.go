// internal/common/usage/store.go
package usage

import (
	"context"
	"time"
)

// Store is the key/value backend for usage counters.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ListStore keeps bounded append-only lists, used by the event log.
type ListStore interface {
	Push(ctx context.Context, key, value string, max int64) error
	Range(ctx context.Context, key string) ([]string, error)
}

// Backend is what both shipped stores implement.
type Backend interface {
	Store
	ListStore
	Ping(ctx context.Context) error
}
