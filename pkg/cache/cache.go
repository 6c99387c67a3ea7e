// Package cache connects to Redis, which holds visitor carts between
// restarts and across instances.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/storefront/config"
)

// Options selects the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// FromEnv reads REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
func FromEnv() Options {
	return Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.Int("REDIS_DB", 0),
	}
}

// Connect opens a client and verifies it with a ping. The client is closed
// again when the ping fails.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
