package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

// AuthController guards the admin routes.
type AuthController struct {
	AppConfig *config.AppConfig
}

func NewAuthController(config *config.AppConfig) *AuthController {
	return &AuthController{
		AppConfig: config,
	}
}

// HandleAuthHeaderCheck is a middleware to check API-KEY & HASH-SIGNATURE.
// The signature is the hex encoded HMAC-SHA256 of the raw body.
func (ac *AuthController) HandleAuthHeaderCheck(c *fiber.Ctx) error {
	apiKey := c.Get("API-KEY", "")
	signature := c.Get("HASH-SIGNATURE", "")
	body := c.Body()

	if ac.AppConfig.Client.ApiKey == "" || apiKey != ac.AppConfig.Client.ApiKey {
		return sendCommonJsonResponse(c, fiber.StatusUnauthorized, false, config.InvalidApiKey)
	}
	if signature == "" {
		return sendCommonJsonResponse(c, fiber.StatusUnauthorized, false, config.HashSignatureRequired)
	}

	mac := hmac.New(sha256.New, []byte(ac.AppConfig.Client.Secret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expectedSignature), []byte(signature)) != 1 {
		return sendCommonJsonResponse(c, fiber.StatusUnauthorized, false, config.SignatureVerifyFailed)
	}

	return c.Next()
}
