package models

import (
	"errors"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
)

var ErrNotRoomHost = errors.New("only host can end the room")

// IsHost reports whether userId created the room. Rooms learned from the
// provider have no host.
func (e *RoomEntry) IsHost(userId string) bool {
	return e.CreatedBy != "" && e.CreatedBy == userId
}

// End removes the room on behalf of its host, participants or not.
func (m *RoomModel) End(code, userId string) (RoomEntry, error) {
	code, err := m.NormalizeCode(code)
	if err != nil {
		return RoomEntry{}, err
	}

	m.mu.Lock()
	e, ok := m.rooms[code]
	if !ok {
		m.mu.Unlock()
		return RoomEntry{}, ErrRoomNotFound
	}
	if !e.IsHost(userId) {
		m.mu.Unlock()
		return RoomEntry{}, ErrNotRoomHost
	}
	delete(m.rooms, code)
	entry := e.clone()
	m.mu.Unlock()

	metrics.RoomsActive.Dec()
	m.logger.WithField("roomCode", code).WithField("userId", userId).Infoln("room ended by host")
	m.natsService.PublishRoomEvent(&natsservice.RoomEvent{
		Event:    natsservice.RoomEnded,
		RoomCode: code,
		UserId:   userId,
	})
	return entry, nil
}
