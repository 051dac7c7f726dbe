package roomstate

import (
	"context"
	"time"

	dbservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/db"
)

// DatabaseBackend stores values in the room_states table.
type DatabaseBackend struct {
	ds *dbservice.DatabaseService
}

func NewDatabaseBackend(ds *dbservice.DatabaseService) *DatabaseBackend {
	return &DatabaseBackend{ds: ds}
}

func (b *DatabaseBackend) Get(_ context.Context, key string) ([]byte, error) {
	info, err := b.ds.GetRoomState(key)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotFound
	}
	return []byte(info.Data), nil
}

func (b *DatabaseBackend) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		// effectively never
		ttl = 100 * 365 * 24 * time.Hour
	}
	_, err := b.ds.UpsertRoomState(key, value, time.Now().Add(ttl))
	return err
}

func (b *DatabaseBackend) Delete(_ context.Context, key string) error {
	_, err := b.ds.DeleteRoomState(key)
	return err
}

func (b *DatabaseBackend) PurgeExpired(_ context.Context, now time.Time, _ time.Duration) (int, error) {
	n, err := b.ds.DeleteExpiredRoomStates(now)
	return int(n), err
}
