package roomstate

import (
	"context"
	"errors"
	"time"

	redisservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/redis"
)

const redisLockTTL = 10 * time.Second

// RedisBackend stores values with a native TTL and serializes writers of
// the same room across processes.
type RedisBackend struct {
	rs *redisservice.RedisService
}

func NewRedisBackend(rs *redisservice.RedisService) *RedisBackend {
	return &RedisBackend{rs: rs}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rs.GetRoomState(ctx, redisservice.Prefix+key)
	if errors.Is(err, redisservice.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rs.PutRoomState(ctx, redisservice.Prefix+key, value, ttl)
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.rs.DeleteRoomState(ctx, redisservice.Prefix+key)
}

func (b *RedisBackend) Lock(ctx context.Context, key string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, redisLockTTL)
	defer cancel()

	val, err := b.rs.LockRoomStateWithRetry(lockCtx, key, redisLockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = b.rs.UnlockRoomState(unlockCtx, key, val)
	}, nil
}
