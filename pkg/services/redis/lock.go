package redisservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	roomStateLockKey = Prefix + "roomStateLock-%s"
)

// unlockScript is a Lua script for atomic check-and-delete.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// LockRoomState tries once to take the write lock of a room state key.
// lockValue must be handed back to UnlockRoomState.
func (s *RedisService) LockRoomState(ctx context.Context, key string, ttl time.Duration) (acquired bool, lockValue string, err error) {
	lockKey := fmt.Sprintf(roomStateLockKey, key)
	val := uuid.NewString()

	ok, err := s.rc.SetNX(ctx, lockKey, val, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis SetNX error for key %s: %w", lockKey, err)
	}
	if !ok {
		return false, "", nil
	}
	return true, val, nil
}

// LockRoomStateWithRetry polls LockRoomState until it succeeds or ctx ends.
func (s *RedisService) LockRoomStateWithRetry(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		acquired, val, err := s.LockRoomState(ctx, key, ttl)
		if err != nil {
			return "", err
		}
		if acquired {
			return val, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for room state lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// UnlockRoomState releases the lock only if it is still held with lockValue.
func (s *RedisService) UnlockRoomState(ctx context.Context, key, lockValue string) error {
	if lockValue == "" {
		return nil
	}
	lockKey := fmt.Sprintf(roomStateLockKey, key)

	deleted, err := s.unlockScriptExec.Run(ctx, s.rc, []string{lockKey}, lockValue).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lockKey, err)
	}
	if deleted == 0 {
		s.logger.WithField("key", lockKey).Warnln("room state lock expired before release")
	}
	return nil
}
