package data

import (
	"context"
	"fmt"
	"time"

	"feed/internal/conf"
	pkgredis "feed/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisCache creates a new Redis cache from configuration.
func NewRedisCache(c *conf.Data, logger log.Logger) (pkgredis.Cache, func(), error) {
	helper := log.NewHelper(logger)

	opts := &redis.Options{
		Addr:         c.Redis.Addr,
		Network:      c.Redis.Network,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
		WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
	}
	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		helper.Errorf("failed to connect to Redis at %s: %v", c.Redis.Addr, err)
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	helper.Infof("connected to Redis at %s", c.Redis.Addr)

	cache := NewRedisWrapper(client)
	cleanup := func() {
		helper.Info("closing Redis connection")
		client.Close()
	}

	return cache, cleanup, nil
}

// RedisWrapper wraps redis.Client to implement pkgredis.Cache interface.
type RedisWrapper struct {
	client redis.UniversalClient
}

// NewRedisWrapper creates a new RedisWrapper.
func NewRedisWrapper(client redis.UniversalClient) *RedisWrapper {
	return &RedisWrapper{client: client}
}

func (r *RedisWrapper) HGetBytes(ctx context.Context, key, field string) ([]byte, error) {
	return r.client.HGet(ctx, key, field).Bytes()
}

// HSetBytes writes the field and moves the hash expiry forward to exp. The expiry
// never shrinks, so a short lived field cannot evict longer lived siblings early.
func (r *RedisWrapper) HSetBytes(ctx context.Context, key, field string, value []byte, exp time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	if exp > 0 {
		pipe.ExpireNX(ctx, key, exp)
		pipe.ExpireGT(ctx, key, exp)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisWrapper) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	return r.client.HDel(ctx, key, fields...).Result()
}

func (r *RedisWrapper) Del(ctx context.Context, keys ...string) (int64, error) {
	return r.client.Del(ctx, keys...).Result()
}
