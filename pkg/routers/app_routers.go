package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/factory"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/version"
)

type router struct {
	app  *fiber.App
	ctrl *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		AppName:     "classroom version: " + version.Version + " runtime: " + runtime.Version(),
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("classroom")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "POST,GET,DELETE,OPTIONS",
	}))

	r := &router{
		app:  app,
		ctrl: ctrl,
	}

	r.registerBaseRoutes()
	r.registerAdminRoutes()

	// must stay the last handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/health", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/token", r.ctrl.TokenController.HandleGetToken)
	r.app.Get("/checkRoom", r.ctrl.RoomController.HandleCheckRoom)
	r.app.Post("/meeting/create", r.ctrl.RoomController.HandleMeetingCreate)
	r.app.Post("/meeting/end/:roomCode", r.ctrl.RoomController.HandleEndRoom)

	transcript := r.app.Group("/transcript")
	transcript.Post("/save", r.ctrl.TranscriptController.HandleSaveSegment)
	transcript.Post("/save-batch", r.ctrl.TranscriptController.HandleSaveSegments)
	transcript.Get("/:roomCode", r.ctrl.TranscriptController.HandleGetTranscript)
	transcript.Delete("/:roomCode", r.ctrl.TranscriptController.HandleDeleteTranscript)
}

func (r *router) registerAdminRoutes() {
	admin := r.app.Group("/admin", r.ctrl.AuthController.HandleAuthHeaderCheck)
	admin.Post("/rooms", r.ctrl.RoomController.HandleListRooms)

	room := admin.Group("/room")
	room.Post("/delete", r.ctrl.RoomController.HandleDeleteRoom)
	room.Post("/state", r.ctrl.RoomController.HandleRoomState)
}
