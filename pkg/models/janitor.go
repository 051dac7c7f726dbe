package models

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// JanitorModel runs the periodic room eviction sweep.
type JanitorModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	app    *config.AppConfig
	rm     *RoomModel
	clock  clock.Clock
	done   chan struct{}
	logger *logrus.Entry
}

func NewJanitorModel(mainCtx context.Context, app *config.AppConfig, rm *RoomModel, logger *logrus.Logger) *JanitorModel {
	ctx, cancel := context.WithCancel(mainCtx)

	return &JanitorModel{
		ctx:    ctx,
		cancel: cancel,
		app:    app,
		rm:     rm,
		clock:  rm.clock,
		done:   make(chan struct{}),
		logger: logger.WithField("model", "janitor"),
	}
}

// StartJanitor blocks until Shutdown is called or the parent context ends.
func (m *JanitorModel) StartJanitor() {
	defer close(m.done)

	interval := m.app.RoomSettings.EvictionInterval
	ticker := m.clock.Ticker(interval)
	defer ticker.Stop()

	m.logger.WithFields(logrus.Fields{
		"interval": interval,
		"ttl":      m.app.RoomSettings.RoomTTL,
	}).Infoln("janitor started")

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Infoln("janitor shutdown completed")
			return
		case now := <-ticker.C:
			m.rm.EvictSweep(now)
		}
	}
}

// Shutdown stops the janitor loop. Use Done to wait for it.
func (m *JanitorModel) Shutdown() {
	m.cancel()
}

// Done is closed once StartJanitor has returned.
func (m *JanitorModel) Done() <-chan struct{} {
	return m.done
}
