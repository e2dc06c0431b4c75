// Package cache is the best-effort key-value accelerator in front of the
// database. Callers treat every error as a miss.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
}
