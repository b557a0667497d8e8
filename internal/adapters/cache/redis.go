package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Timeouts are deliberately short: the cache sits in front of Postgres,
// so a slow Redis must never cost more than the query it was saving.
const (
	dialTimeout = 5 * time.Second
	opTimeout   = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// NewRedisClient opens a connection pool for the habit list cache and
// the rate limiter, verified with a ping before it is handed out.
func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping to %s failed: %w", rdb.Options().Addr, err)
	}
	return rdb, nil
}
