package dbservice

import (
	"errors"
	"time"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/dbmodels"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetRoomState returns nil when the key is missing or expired.
func (s *DatabaseService) GetRoomState(key string) (*dbmodels.RoomState, error) {
	info := new(dbmodels.RoomState)
	cond := &dbmodels.RoomState{
		StateKey: key,
	}

	result := s.db.Where(cond).Where("expires_at > ?", time.Now().UTC()).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

// UpsertRoomState inserts the row or replaces data and expiry of the existing one.
func (s *DatabaseService) UpsertRoomState(key string, data []byte, expiresAt time.Time) (int64, error) {
	info := &dbmodels.RoomState{
		StateKey:  key,
		Data:      string(data),
		ExpiresAt: expiresAt.UTC(),
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "modified"}),
	}).Create(info)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *DatabaseService) DeleteRoomState(key string) (int64, error) {
	cond := &dbmodels.RoomState{
		StateKey: key,
	}

	result := s.db.Where(cond).Delete(&dbmodels.RoomState{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteExpiredRoomStates removes every row past its expiry.
func (s *DatabaseService) DeleteExpiredRoomStates(now time.Time) (int64, error) {
	result := s.db.Where("expires_at <= ?", now.UTC()).Delete(&dbmodels.RoomState{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
