package models

import (
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
)

// AppendParticipant adds p to an existing room. A participant whose identity
// is already present is left untouched and added is false.
func (m *RoomModel) AppendParticipant(code string, p Participant) (added bool, err error) {
	code, err = m.NormalizeCode(code)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	e, ok := m.rooms[code]
	if !ok {
		m.mu.Unlock()
		return false, ErrRoomNotFound
	}
	added = m.appendLocked(e, p)
	m.mu.Unlock()

	if added {
		m.onParticipantJoined(code, p)
	}
	return added, nil
}

// Join is GetOrCreate and AppendParticipant in one critical section, so the
// room can't be swept between the two steps.
func (m *RoomModel) Join(code, creatorId string, p Participant) (entry RoomEntry, added bool, err error) {
	code, err = m.NormalizeCode(code)
	if err != nil {
		return RoomEntry{}, false, err
	}

	m.mu.Lock()
	e, created := m.getOrCreateLocked(code, creatorId)
	added = m.appendLocked(e, p)
	entry = e.clone()
	m.mu.Unlock()

	if created {
		m.onRoomCreated(entry)
	}
	if added {
		m.onParticipantJoined(code, p)
	}
	return entry, added, nil
}

func (m *RoomModel) appendLocked(e *RoomEntry, p Participant) bool {
	if e.hasParticipant(p.Identity) {
		return false
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = m.clock.Now()
	}
	e.Participants = append(e.Participants, p)
	return true
}

func (m *RoomModel) onParticipantJoined(code string, p Participant) {
	metrics.ParticipantsJoined.Inc()
	m.logger.WithFields(logrus.Fields{
		"roomCode": code,
		"identity": p.Identity,
		"role":     p.Role,
	}).Infoln("participant joined")

	m.natsService.PublishRoomEvent(&natsservice.RoomEvent{
		Event:    natsservice.ParticipantJoined,
		RoomCode: code,
		Identity: p.Identity,
		UserId:   p.UserId,
		Role:     string(p.Role),
	})
}
