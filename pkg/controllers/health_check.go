package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

type HealthCheckController struct {
	AppConfig *config.AppConfig
}

func NewHealthCheckController(config *config.AppConfig) *HealthCheckController {
	return &HealthCheckController{
		AppConfig: config,
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "ok",
		"livekitConfigured": hc.AppConfig.LivekitInfo.IsConfigured(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}
