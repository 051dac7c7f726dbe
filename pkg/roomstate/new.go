package roomstate

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/dbmodels"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	dbservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/db"
	redisservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/redis"
	"gorm.io/gorm"
)

// NewFromConfig builds the store for the configured driver. rc and db are
// only needed by the redis and database drivers. codeCase is the room code
// convention records are keyed by.
func NewFromConfig(cnf *config.StateStore, codeCase string, rc *redis.Client, db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	var backend Backend

	switch cnf.Driver {
	case config.StateStoreFile:
		fb, err := NewFileBackend(cnf.Path)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.StateStoreRedis:
		if rc == nil {
			return nil, fmt.Errorf("state store driver %q needs redis_info", cnf.Driver)
		}
		backend = NewRedisBackend(redisservice.New(rc, logger))
	case config.StateStoreDatabase:
		if db == nil {
			return nil, fmt.Errorf("state store driver %q needs database_info", cnf.Driver)
		}
		if err := db.AutoMigrate(&dbmodels.RoomState{}); err != nil {
			return nil, err
		}
		backend = NewDatabaseBackend(dbservice.New(db, logger))
	default:
		return nil, fmt.Errorf("unknown state store driver %q", cnf.Driver)
	}

	logger.WithField("driver", cnf.Driver).Infoln("room state store ready")
	return NewStore(backend, cnf.Expiry, roomcode.New(codeCase), logger), nil
}
