package natsservice

import (
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// NatsService publishes room lifecycle events for other services of the
// platform. With no connection every publish is a no-op.
type NatsService struct {
	app     *config.AppConfig
	nc      *nats.Conn
	subject string
	logger  *logrus.Entry
}

func New(app *config.AppConfig, logger *logrus.Logger) *NatsService {
	return &NatsService{
		app:     app,
		nc:      app.NatsConn,
		subject: app.NatsInfo.Subjects.RoomEvents,
		logger:  logger.WithField("service", "nats"),
	}
}

func (s *NatsService) Enabled() bool {
	return s != nil && s.nc != nil
}
