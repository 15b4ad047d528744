package ports

import "context"

// DurableStore is keyed string persistence surviving process restarts.
// Get returns a not_found AppError when the key has no value; any other
// error indicates the store itself misbehaved (unavailable, timeout).
type DurableStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
