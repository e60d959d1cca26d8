package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil is returned when a key or hash field does not exist.
const Nil = redis.Nil

// Cache is the subset of redis commands the recommendation hot tier relies on.
type Cache interface {
	HGetBytes(ctx context.Context, key, field string) ([]byte, error)
	// HSetBytes sets field in hash key and refreshes the key expiry to exp.
	HSetBytes(ctx context.Context, key, field string, value []byte, exp time.Duration) error
	HDel(ctx context.Context, key string, fields ...string) (int64, error)

	Del(ctx context.Context, keys ...string) (int64, error)
}
