package factory

import (
	"context"
	"time"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/controllers"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	AuthController        *controllers.AuthController
	HealthCheckController *controllers.HealthCheckController
	RoomController        *controllers.RoomController
	TokenController       *controllers.TokenController
	TranscriptController  *controllers.TranscriptController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers  *ApplicationControllers
	AppConfig    *config.AppConfig
	Ctx          context.Context
	janitorModel *models.JanitorModel
	stateStore   *roomstate.Store
}

func provideStateStore(app *config.AppConfig) (*roomstate.Store, error) {
	return roomstate.NewFromConfig(&app.RecorderSettings.StateStore, app.RoomSettings.CodeCase, app.RDS, app.DB, app.Logger)
}

func (a *Application) Boot() {
	go a.janitorModel.StartJanitor()

	// room states left behind by rooms nobody closed
	go func() {
		ctx, cancel := context.WithTimeout(a.Ctx, time.Minute)
		defer cancel()
		n, err := a.stateStore.PurgeExpired(ctx)
		if err != nil {
			a.AppConfig.Logger.WithError(err).Warnln("failed to purge expired room states")
			return
		}
		if n > 0 {
			a.AppConfig.Logger.WithField("count", n).Infoln("purged expired room states")
		}
	}()
}

func (a *Application) Shutdown() {
	a.janitorModel.Shutdown()
	select {
	case <-a.janitorModel.Done():
	case <-time.After(5 * time.Second):
	}
}
