package dbmodels

import (
	"time"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// RoomState holds the persisted recorder state of one room, keyed by
// classroom_room_<code>.
type RoomState struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	StateKey  string    `gorm:"column:state_key;size:191;uniqueIndex;not null"`
	Data      string    `gorm:"column:data;type:text;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
	Created   time.Time `gorm:"column:created;autoCreateTime"`
	Modified  time.Time `gorm:"column:modified;autoUpdateTime"`
}

func (m *RoomState) TableName() string {
	return config.FormatDBTable("room_states")
}
