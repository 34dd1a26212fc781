// Package cache holds rendered public payloads between writes.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns ("", nil) when the key does not exist.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// NopCache never stores anything; used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, error)              { return "", nil }
func (NopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (NopCache) Del(context.Context, ...string) error                     { return nil }
