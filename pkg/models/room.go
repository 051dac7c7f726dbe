package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/livekit/protocol/livekit"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	livekitservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/livekit"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
	"golang.org/x/sync/singleflight"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
)

type RoomSource string

const (
	RoomSourceLocal    RoomSource = "local"
	RoomSourceProvider RoomSource = "provider"
)

type Participant struct {
	Identity    string    `json:"identity"`
	UserId      string    `json:"userId,omitempty"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type RoomEntry struct {
	Code      string     `json:"roomCode"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy,omitempty"`
	Source    RoomSource `json:"source"`
	// RegisteredAt is when this process started tracking the room; eviction
	// age is measured from it.
	RegisteredAt time.Time     `json:"registeredAt"`
	Participants []Participant `json:"participants"`
}

func (e *RoomEntry) clone() RoomEntry {
	c := *e
	c.Participants = make([]Participant, len(e.Participants))
	copy(c.Participants, e.Participants)
	return c
}

func (e *RoomEntry) hasParticipant(identity string) bool {
	for _, p := range e.Participants {
		if p.Identity == identity {
			return true
		}
	}
	return false
}

// providerRoomLoader is the part of the livekit service the registry needs.
type providerRoomLoader interface {
	LoadRoomInfo(ctx context.Context, roomCode string) (*livekit.Room, error)
}

// RoomModel is the process wide registry of live rooms. All mutations happen
// under one lock and callers only ever receive copies.
type RoomModel struct {
	mu    sync.RWMutex
	rooms map[string]*RoomEntry

	app         *config.AppConfig
	rules       *roomcode.Rules
	lk          providerRoomLoader
	natsService *natsservice.NatsService
	lookups     singleflight.Group
	clock       clock.Clock
	logger      *logrus.Entry
}

func NewRoomModel(app *config.AppConfig, lk *livekitservice.LivekitService, natsService *natsservice.NatsService, logger *logrus.Logger) *RoomModel {
	m := &RoomModel{
		rooms:       make(map[string]*RoomEntry),
		app:         app,
		rules:       roomcode.New(app.RoomSettings.CodeCase),
		natsService: natsService,
		clock:       clock.New(),
		logger:      logger.WithField("model", "room"),
	}
	if lk != nil {
		m.lk = lk
	}
	return m
}

// NormalizeCode returns the registry key form of raw or roomcode.ErrInvalidRoomCode.
func (m *RoomModel) NormalizeCode(raw string) (string, error) {
	return m.rules.Normalize(raw)
}

// GenerateCode returns a fresh code that is not registered right now.
func (m *RoomModel) GenerateCode() (string, error) {
	for i := 0; i < 5; i++ {
		code, err := m.rules.Generate()
		if err != nil {
			return "", err
		}
		m.mu.RLock()
		_, ok := m.rooms[code]
		m.mu.RUnlock()
		if !ok {
			return code, nil
		}
	}
	return "", errors.New("unable to generate unique room code")
}
