package cache

import (
	"context"
	"time"
)

// NoOpCache never stores anything. Used when Redis is unreachable at startup.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (c *NoOpCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

var _ Cache = (*NoOpCache)(nil)
