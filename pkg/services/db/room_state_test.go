package dbservice

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/dbmodels"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *DatabaseService {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dbmodels.RoomState{}))

	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return New(db, l)
}

func TestDatabaseService_RoomState(t *testing.T) {
	s := newTestService(t)
	key := "classroom_room_abc-defg-hij"

	info, err := s.GetRoomState(key)
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = s.UpsertRoomState(key, []byte(`{"totalUsedTime":1000}`), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = s.UpsertRoomState(key, []byte(`{"totalUsedTime":2000}`), time.Now().Add(time.Hour))
	require.NoError(t, err)

	info, err = s.GetRoomState(key)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, `{"totalUsedTime":2000}`, info.Data)

	var count int64
	s.db.Model(&dbmodels.RoomState{}).Count(&count)
	assert.Equal(t, int64(1), count)

	n, err := s.DeleteRoomState(key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	info, err = s.GetRoomState(key)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestDatabaseService_ExpiredRoomState(t *testing.T) {
	s := newTestService(t)
	key := "classroom_room_abc-defg-hij"

	_, err := s.UpsertRoomState(key, []byte(`{}`), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	info, err := s.GetRoomState(key)
	require.NoError(t, err)
	assert.Nil(t, info)

	n, err := s.DeleteExpiredRoomStates(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
