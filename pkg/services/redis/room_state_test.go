package redisservice

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// these tests need a running redis, e.g. REDIS_ADDR=127.0.0.1:6379
func newTestService(t *testing.T) *RedisService {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, rc.Ping(context.Background()).Err())
	return New(rc, logrus.New())
}

func TestRedisService_RoomState(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key := Prefix + "test_room_state"

	_, err := s.GetRoomState(ctx, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.PutRoomState(ctx, key, []byte(`{"a":1}`), time.Minute))
	data, err := s.GetRoomState(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	ttl, err := s.rc.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.DeleteRoomState(ctx, key))
	_, err = s.GetRoomState(ctx, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisService_RoomStateLock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key := "test_lock"

	ok, val, err := s.LockRoomState(ctx, key, time.Second*5)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = s.LockRoomState(ctx, key, time.Second*5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UnlockRoomState(ctx, key, val))

	shortCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	val, err = s.LockRoomStateWithRetry(shortCtx, key, time.Second*5)
	require.NoError(t, err)
	assert.NoError(t, s.UnlockRoomState(ctx, key, val))
}
