// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"quest-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the answer and template caches.
type RedisClient struct {
	Client redis.Cmdable
	closer func() error
}

func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	return &RedisClient{Client: rdb, closer: rdb.Close}
}

// NewRedisFromClient wraps any go-redis client, including redismock ones.
func NewRedisFromClient(client redis.Cmdable) *RedisClient {
	return &RedisClient{Client: client}
}

func (c *RedisClient) Name() string { return "redis" }

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
