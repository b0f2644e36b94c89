package cache

import (
	"context"
	"time"
)

// Store represents a shared cache interface used across the application.
// The catalog stats cache is the primary consumer; values are opaque bytes.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
