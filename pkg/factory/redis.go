package factory

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func newRedisClient(rf *config.RedisInfo) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if rf.UseTLS {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	if len(rf.SentinelAddresses) > 0 {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			SentinelAddrs:    rf.SentinelAddresses,
			SentinelUsername: rf.SentinelUsername,
			SentinelPassword: rf.SentinelPassword,
			MasterName:       rf.MasterName,
			Username:         rf.Username,
			Password:         rf.Password,
			DB:               rf.DBName,
			TLSConfig:        tlsConfig,
		}), nil
	}
	if rf.Host == "" {
		return nil, errors.New("redis_info.host or sentinel_addresses required")
	}
	return redis.NewClient(&redis.Options{
		Addr:      rf.Host,
		Username:  rf.Username,
		Password:  rf.Password,
		DB:        rf.DBName,
		TLSConfig: tlsConfig,
	}), nil
}

func NewRedisConnection(ctx context.Context, appCnf *config.AppConfig) error {
	rdb, err := newRedisClient(&appCnf.RedisInfo)
	if err != nil {
		return err
	}

	if _, err = rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return err
	}

	info, err := rdb.Info(ctx, "server").Result()
	if err == nil && info != "" {
		for _, line := range strings.Split(info, "\r\n") {
			if v, ok := strings.CutPrefix(line, "redis_version:"); ok {
				appCnf.Logger.WithField("version", v).Info("successfully connected to Redis")
				break
			}
		}
	}

	appCnf.RDS = rdb
	return nil
}
