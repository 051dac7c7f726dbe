package natsservice

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func TestNatsService_DisabledIsNoop(t *testing.T) {
	app := &config.AppConfig{}
	app.NatsInfo.Subjects.RoomEvents = "classroom.room_events"
	s := New(app, logrus.New())

	assert.False(t, s.Enabled())
	assert.Equal(t, "classroom.room_events.abc-defg-hij", s.subjectFor("abc-defg-hij"))
	assert.NotPanics(t, func() {
		s.PublishRoomEvent(&RoomEvent{Event: RoomCreated, RoomCode: "abc-defg-hij"})
	})

	var nilService *NatsService
	assert.False(t, nilService.Enabled())
}
