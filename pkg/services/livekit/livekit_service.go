package livekitservice

import (
	"context"
	"errors"
	"time"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

const (
	defaultLookupTimeout = 5 * time.Second
	endRoomTimeout       = 15 * time.Second
)

var ErrNotConfigured = errors.New("livekit is not configured")

// roomAPI is the part of the livekit room service the classroom uses.
type roomAPI interface {
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
}

// LivekitService talks to the livekit server API for room lookups and
// teardown. Without credentials every call fails with ErrNotConfigured.
type LivekitService struct {
	ctx           context.Context
	rooms         roomAPI
	lookupTimeout time.Duration
	logger        *logrus.Entry
}

func New(ctx context.Context, app *config.AppConfig, logger *logrus.Logger) *LivekitService {
	s := &LivekitService{
		ctx:           ctx,
		lookupTimeout: app.RoomSettings.ProviderLookupTimeout,
		logger:        logger.WithField("service", "livekit"),
	}
	if s.lookupTimeout <= 0 {
		s.lookupTimeout = defaultLookupTimeout
	}

	lk := app.LivekitInfo
	if lk.IsConfigured() {
		s.rooms = lksdk.NewRoomServiceClient(lk.Host, lk.ApiKey, lk.Secret)
	} else {
		s.logger.Warnln("livekit credentials missing, provider lookups disabled")
	}
	return s
}

func (s *LivekitService) Configured() bool {
	return s != nil && s.rooms != nil
}

// LoadRoomInfo asks livekit for one active room by name. A room livekit
// doesn't know gives nil, nil.
func (s *LivekitService) LoadRoomInfo(ctx context.Context, roomCode string) (*livekit.Room, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	res, err := s.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{
		Names: []string{roomCode},
	})
	if err != nil {
		s.logger.WithError(err).WithField("roomCode", roomCode).Warnln("failed to list livekit rooms")
		return nil, err
	}
	for _, r := range res.GetRooms() {
		if r.GetName() == roomCode {
			return r, nil
		}
	}
	return nil, nil
}

// EndRoom closes the livekit room for everyone in it. It runs on the service
// context so a finished http request doesn't cancel it.
func (s *LivekitService) EndRoom(roomCode string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(s.ctx, endRoomTimeout)
	defer cancel()

	if _, err := s.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: roomCode}); err != nil {
		return err
	}
	s.logger.WithField("roomCode", roomCode).Infoln("livekit room closed")
	return nil
}
