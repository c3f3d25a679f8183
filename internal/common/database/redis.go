// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"nexsupply-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize     = 10
	defaultRedisMinIdleConns = 2
	redisPingTimeout         = 2 * time.Second
)

// RedisClient holds the connection shared by the usage counters, the
// per-identity event log and the health check.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client lazily; no connection is made until the first
// command, so callers Ping before relying on it.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	return &RedisClient{Client: redis.NewClient(redisOptions(cfg))}
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultRedisPoolSize
	}
	minIdle := cfg.MinIdleConns
	if minIdle <= 0 || minIdle > poolSize {
		minIdle = min(defaultRedisMinIdleConns, poolSize)
	}

	// Quota checks sit on the request path.
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  2 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: minIdle,
	}
}

// Store returns the command interface the usage store is built on.
func (c *RedisClient) Store() redis.Cmdable {
	return c.Client
}

// Ping reports whether Redis answers within the health-check budget.
func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
