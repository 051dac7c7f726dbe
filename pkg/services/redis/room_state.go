package redisservice

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = errors.New("key not found")

// GetRoomState returns the raw persisted value of key.
func (s *RedisService) GetRoomState(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// PutRoomState stores value under key. A ttl of 0 keeps it forever.
func (s *RedisService) PutRoomState(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rc.Set(ctx, key, value, ttl).Err()
}

func (s *RedisService) DeleteRoomState(ctx context.Context, key string) error {
	return s.rc.Del(ctx, key).Err()
}
