package livekitservice

import (
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/sirupsen/logrus"
)

// JoinWithToken connects to a livekit room as the token's identity without
// publishing anything. Tracks are only subscribed when cb asks for them.
// The caller must Disconnect the returned room.
func JoinWithToken(url, token string, cb *lksdk.RoomCallback, logger *logrus.Logger) (*lksdk.Room, error) {
	log := logger.WithField("service", "livekit")

	if cb == nil {
		cb = lksdk.NewRoomCallback()
		cb.OnDisconnected = func() {
			log.Infoln("disconnected from livekit room")
		}
	}
	if cb.OnParticipantConnected == nil {
		cb.OnParticipantConnected = func(p *lksdk.RemoteParticipant) {
			log.WithField("identity", p.Identity()).Debugln("participant connected")
		}
	}

	room, err := lksdk.ConnectToRoomWithToken(url, token, cb, lksdk.WithAutoSubscribe(false))
	if err != nil {
		return nil, err
	}
	log.WithField("room", room.Name()).Infoln("connected to livekit room")
	return room, nil
}
