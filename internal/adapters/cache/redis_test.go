package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("Connects And Pings", func(t *testing.T) {
		rdb, err := NewRedisClient(mr.Host(), mr.Port(), "", 0)
		require.NoError(t, err)
		defer rdb.Close()

		pong, err := rdb.Ping(context.Background()).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Fails Fast On Unreachable Server", func(t *testing.T) {
		_, err := NewRedisClient("127.0.0.1", "1", "", 0)
		assert.Error(t, err)
	})
}

func TestRedisClient_Roundtrip(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(mr.Host(), mr.Port(), "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Set and Get Value", func(t *testing.T) {
		err := rdb.Set(ctx, "habits:some-user", "cached payload", 1*time.Minute).Err()
		require.NoError(t, err)

		val, err := rdb.Get(ctx, "habits:some-user").Result()
		assert.NoError(t, err)
		assert.Equal(t, "cached payload", val)
	})

	t.Run("Expire Check", func(t *testing.T) {
		err := rdb.Set(ctx, "test_expire", "expire_me", 1*time.Second).Err()
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)

		_, err = rdb.Get(ctx, "test_expire").Result()
		assert.ErrorIs(t, err, redis.Nil, "Errors need to be of type 'redis.Nil'")
	})
}
