package livekitservice

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

type fakeRoomAPI struct {
	rooms   []*livekit.Room
	err     error
	deleted []string
	timeout time.Duration
}

func (f *fakeRoomAPI) ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error) {
	if dl, ok := ctx.Deadline(); ok {
		f.timeout = time.Until(dl)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &livekit.ListRoomsResponse{Rooms: f.rooms}, nil
}

func (f *fakeRoomAPI) DeleteRoom(_ context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, req.Room)
	return &livekit.DeleteRoomResponse{}, nil
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_NotConfigured(t *testing.T) {
	s := New(context.Background(), &config.AppConfig{}, newTestLogger())
	assert.False(t, s.Configured())

	_, err := s.LoadRoomInfo(context.Background(), "abc-defg-hij")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.EndRoom("abc-defg-hij"), ErrNotConfigured)

	var nilService *LivekitService
	assert.False(t, nilService.Configured())
}

func TestNew_Configured(t *testing.T) {
	s := New(context.Background(), &config.AppConfig{
		LivekitInfo: config.LivekitInfo{Host: "ws://localhost:7880", ApiKey: "devkey", Secret: "secret"},
	}, newTestLogger())
	assert.True(t, s.Configured())
	assert.Equal(t, defaultLookupTimeout, s.lookupTimeout)
}

func TestLoadRoomInfo(t *testing.T) {
	api := &fakeRoomAPI{rooms: []*livekit.Room{
		{Name: "other-room-x"},
		{Name: "abc-defg-hij", NumParticipants: 3},
	}}
	s := &LivekitService{
		ctx:           context.Background(),
		rooms:         api,
		lookupTimeout: 2 * time.Second,
		logger:        newTestLogger().WithField("service", "livekit"),
	}

	room, err := s.LoadRoomInfo(context.Background(), "abc-defg-hij")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.EqualValues(t, 3, room.NumParticipants)
	assert.LessOrEqual(t, api.timeout, 2*time.Second)
	assert.Positive(t, api.timeout)

	room, err = s.LoadRoomInfo(context.Background(), "zzz-defg-hij")
	require.NoError(t, err)
	assert.Nil(t, room)

	api.err = errors.New("unavailable")
	_, err = s.LoadRoomInfo(context.Background(), "abc-defg-hij")
	assert.Error(t, err)
}

func TestEndRoom(t *testing.T) {
	api := &fakeRoomAPI{}
	s := &LivekitService{
		ctx:    context.Background(),
		rooms:  api,
		logger: newTestLogger().WithField("service", "livekit"),
	}

	require.NoError(t, s.EndRoom("abc-defg-hij"))
	assert.Equal(t, []string{"abc-defg-hij"}, api.deleted)

	api.err = errors.New("twirp error")
	assert.Error(t, s.EndRoom("abc-defg-hij"))
}
