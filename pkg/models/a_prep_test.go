package models

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/livekit/protocol/livekit"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func newTestAppConfig() *config.AppConfig {
	cnf, err := config.New(&config.AppConfig{
		LivekitInfo: config.LivekitInfo{
			Host:   "http://localhost:7880",
			ApiKey: "devkey",
			Secret: "a-very-long-secret-for-testing-purposes",
		},
	})
	if err != nil {
		panic(err)
	}
	return cnf
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newTestRoomModel() (*RoomModel, *clock.Mock) {
	m := NewRoomModel(newTestAppConfig(), nil, nil, newTestLogger())
	mc := clock.NewMock()
	mc.Set(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	m.clock = mc
	return m, mc
}

type fakeRoomLoader struct {
	mu    sync.Mutex
	rooms map[string]*livekit.Room
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeRoomLoader) LoadRoomInfo(_ context.Context, roomCode string) (*livekit.Room, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms[roomCode], nil
}
