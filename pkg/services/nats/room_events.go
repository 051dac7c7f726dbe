package natsservice

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

type RoomEventType string

const (
	RoomCreated       RoomEventType = "room_created"
	ParticipantJoined RoomEventType = "participant_joined"
	RoomEvicted       RoomEventType = "room_evicted"
	RoomDeleted       RoomEventType = "room_deleted"
	RoomEnded         RoomEventType = "room_ended"
)

type RoomEvent struct {
	Event    RoomEventType `json:"event"`
	RoomCode string        `json:"roomCode"`
	Identity string        `json:"identity,omitempty"`
	UserId   string        `json:"userId,omitempty"`
	Role     string        `json:"role,omitempty"`
	SentAt   int64         `json:"sentAt"`
}

// subjectFor returns <base>.<roomCode> so consumers can subscribe per room
// or to <base>.> for everything.
func (s *NatsService) subjectFor(roomCode string) string {
	return s.subject + "." + roomCode
}

// PublishRoomEvent is fire and forget, failures are only logged.
func (s *NatsService) PublishRoomEvent(ev *RoomEvent) {
	if !s.Enabled() || ev == nil {
		return
	}
	if ev.SentAt == 0 {
		ev.SentAt = time.Now().UnixMilli()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.WithError(err).Errorln("failed to marshal room event")
		return
	}

	err = s.nc.Publish(s.subjectFor(ev.RoomCode), data)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":    ev.Event,
			"roomCode": ev.RoomCode,
		}).Warnln("failed to publish room event")
	}
}
