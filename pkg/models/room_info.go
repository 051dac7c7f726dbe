package models

import (
	"context"
	"sort"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
)

type RoomExistence struct {
	Exists          bool       `json:"exists"`
	RoomCode        string     `json:"roomCode"`
	NumParticipants int        `json:"numParticipants"`
	CreatedAt       time.Time  `json:"createdAt"`
	Source          RoomSource `json:"source,omitempty"`
}

// Exists looks the room up locally first and then on the media provider.
// A room found on the provider is registered locally with no participants.
// Provider failures are logged and reported as not existing.
func (m *RoomModel) Exists(ctx context.Context, code string) (*RoomExistence, error) {
	code, err := m.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	if res, ok := m.localExistence(code); ok {
		return res, nil
	}

	res := &RoomExistence{RoomCode: code}
	if m.lk == nil || !m.app.LivekitInfo.IsConfigured() {
		return res, nil
	}

	v, err, _ := m.lookups.Do(code, func() (any, error) {
		return m.lk.LoadRoomInfo(context.WithoutCancel(ctx), code)
	})
	if err != nil {
		metrics.ProviderLookups.WithLabelValues("error").Inc()
		m.logger.WithError(err).WithField("roomCode", code).Warnln("provider room lookup failed")
		return res, nil
	}
	room, _ := v.(*livekit.Room)
	if room == nil {
		metrics.ProviderLookups.WithLabelValues("not_found").Inc()
		return res, nil
	}
	metrics.ProviderLookups.WithLabelValues("found").Inc()

	entry := m.registerFromProvider(code, room)
	res.Exists = true
	res.NumParticipants = int(room.GetNumParticipants())
	res.CreatedAt = entry.CreatedAt
	res.Source = RoomSourceProvider
	return res, nil
}

func (m *RoomModel) localExistence(code string) (*RoomExistence, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.rooms[code]
	if !ok {
		return nil, false
	}
	return &RoomExistence{
		Exists:          true,
		RoomCode:        code,
		NumParticipants: len(e.Participants),
		CreatedAt:       e.CreatedAt,
		Source:          e.Source,
	}, true
}

// registerFromProvider keeps the provider's creation time for reporting but
// starts the eviction clock now. An entry registered meanwhile wins.
func (m *RoomModel) registerFromProvider(code string, room *livekit.Room) RoomEntry {
	now := m.clock.Now()
	createdAt := now
	if ct := room.GetCreationTime(); ct > 0 {
		createdAt = time.Unix(ct, 0)
	}

	m.mu.Lock()
	if e, ok := m.rooms[code]; ok {
		entry := e.clone()
		m.mu.Unlock()
		return entry
	}
	e := &RoomEntry{
		Code:         code,
		CreatedAt:    createdAt,
		Source:       RoomSourceProvider,
		RegisteredAt: now,
		Participants: []Participant{},
	}
	m.rooms[code] = e
	entry := e.clone()
	m.mu.Unlock()

	m.onRoomCreated(entry)
	return entry
}

func (m *RoomModel) Get(code string) (RoomEntry, bool) {
	code, err := m.NormalizeCode(code)
	if err != nil {
		return RoomEntry{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rooms[code]
	if !ok {
		return RoomEntry{}, false
	}
	return e.clone(), true
}

// List returns a snapshot of all rooms, oldest first.
func (m *RoomModel) List() []RoomEntry {
	m.mu.RLock()
	list := make([]RoomEntry, 0, len(m.rooms))
	for _, e := range m.rooms {
		list = append(list, e.clone())
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Code < list[j].Code
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Delete removes a room regardless of its participants.
func (m *RoomModel) Delete(code string) (bool, error) {
	code, err := m.NormalizeCode(code)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	_, ok := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()

	if ok {
		metrics.RoomsActive.Dec()
		m.logger.WithField("roomCode", code).Infoln("room deleted")
		m.natsService.PublishRoomEvent(&natsservice.RoomEvent{
			Event:    natsservice.RoomDeleted,
			RoomCode: code,
		})
	}
	return ok, nil
}

// EvictSweep removes every room without participants that has been
// registered longer than the configured TTL. It returns the removed codes.
func (m *RoomModel) EvictSweep(now time.Time) []string {
	ttl := m.app.RoomSettings.RoomTTL

	var evicted []string
	m.mu.Lock()
	for code, e := range m.rooms {
		if len(e.Participants) != 0 {
			continue
		}
		if now.Sub(e.RegisteredAt) > ttl {
			delete(m.rooms, code)
			evicted = append(evicted, code)
		}
	}
	m.mu.Unlock()

	for _, code := range evicted {
		metrics.RoomsEvicted.Inc()
		metrics.RoomsActive.Dec()
		m.natsService.PublishRoomEvent(&natsservice.RoomEvent{
			Event:    natsservice.RoomEvicted,
			RoomCode: code,
		})
	}
	if len(evicted) > 0 {
		m.logger.WithFields(logrus.Fields{
			"count": len(evicted),
			"rooms": evicted,
		}).Infoln("evicted stale empty rooms")
	}
	return evicted
}
