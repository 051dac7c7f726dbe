//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/google/wire"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/controllers"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	livekitservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/livekit"
	natsservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/nats"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/userservice"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	livekitservice.New,
	natsservice.New,
	userservice.New,
	provideStateStore,
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewAuthModel,
	models.NewRoomModel,
	models.NewJanitorModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewAuthController,
	controllers.NewHealthCheckController,
	controllers.NewRoomController,
	controllers.NewTokenController,
	controllers.NewTranscriptController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		wire.FieldsOf(new(*config.AppConfig), "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
