package helpers

import (
	"context"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/factory"
)

// PrepareServer opens the connections the configured features need.
func PrepareServer(ctx context.Context, appCnf *config.AppConfig) error {
	driver := appCnf.RecorderSettings.StateStore.Driver

	if driver == config.StateStoreDatabase {
		if err := factory.NewDatabaseConnection(ctx, appCnf); err != nil {
			return err
		}
	}

	if driver == config.StateStoreRedis || appCnf.RedisInfo.Host != "" || len(appCnf.RedisInfo.SentinelAddresses) > 0 {
		if err := factory.NewRedisConnection(ctx, appCnf); err != nil {
			return err
		}
	}

	if appCnf.NatsInfo.Enabled {
		if err := factory.NewNatsConnection(appCnf); err != nil {
			return err
		}
	}

	return nil
}
