package models

import (
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
)

// GetOrCreate returns the room for code, registering a new empty one when
// unseen. created reports whether this call registered it.
func (m *RoomModel) GetOrCreate(code, creatorId string) (entry RoomEntry, created bool, err error) {
	code, err = m.NormalizeCode(code)
	if err != nil {
		return RoomEntry{}, false, err
	}

	m.mu.Lock()
	e, created := m.getOrCreateLocked(code, creatorId)
	entry = e.clone()
	m.mu.Unlock()

	if created {
		m.onRoomCreated(entry)
	}
	return entry, created, nil
}

// Create registers a room explicitly, as a host does before sharing the code.
func (m *RoomModel) Create(code, creatorId string) (RoomEntry, error) {
	code, err := m.NormalizeCode(code)
	if err != nil {
		return RoomEntry{}, err
	}

	m.mu.Lock()
	if _, ok := m.rooms[code]; ok {
		m.mu.Unlock()
		return RoomEntry{}, ErrRoomAlreadyExists
	}
	e, _ := m.getOrCreateLocked(code, creatorId)
	entry := e.clone()
	m.mu.Unlock()

	m.onRoomCreated(entry)
	return entry, nil
}

func (m *RoomModel) getOrCreateLocked(code, creatorId string) (*RoomEntry, bool) {
	if e, ok := m.rooms[code]; ok {
		return e, false
	}
	now := m.clock.Now()
	e := &RoomEntry{
		Code:         code,
		CreatedAt:    now,
		CreatedBy:    creatorId,
		Source:       RoomSourceLocal,
		RegisteredAt: now,
		Participants: []Participant{},
	}
	m.rooms[code] = e
	return e, true
}

func (m *RoomModel) onRoomCreated(entry RoomEntry) {
	metrics.RoomsCreated.WithLabelValues(string(entry.Source)).Inc()
	metrics.RoomsActive.Inc()
	m.logger.WithFields(logrus.Fields{
		"roomCode":  entry.Code,
		"createdBy": entry.CreatedBy,
		"source":    entry.Source,
	}).Infoln("room registered")

	m.natsService.PublishRoomEvent(&natsservice.RoomEvent{
		Event:    natsservice.RoomCreated,
		RoomCode: entry.Code,
		UserId:   entry.CreatedBy,
	})
}
