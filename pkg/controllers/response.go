package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
)

type commonResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

func sendCommonJsonResponse(c *fiber.Ctx, httpStatus int, status bool, msg string) error {
	return c.Status(httpStatus).JSON(&commonResponse{
		Status: status,
		Msg:    msg,
	})
}

// errorStatus maps domain errors to an http status and a client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, roomcode.ErrEmptyRoomCode):
		return fiber.StatusBadRequest, config.RoomCodeRequired
	case errors.Is(err, roomcode.ErrInvalidRoomCode):
		return fiber.StatusBadRequest, config.InvalidRoomCodeFormat
	case errors.Is(err, models.ErrUnknownRole):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrIdentityRequired):
		return fiber.StatusBadRequest, config.UserRequired
	case errors.Is(err, models.ErrCredentialsNotConfigured):
		return fiber.StatusServiceUnavailable, config.LivekitNotConfigured
	case errors.Is(err, models.ErrRoomAlreadyExists):
		return fiber.StatusConflict, config.RoomAlreadyExists
	case errors.Is(err, models.ErrRoomNotFound):
		return fiber.StatusNotFound, config.RoomNotFound
	case errors.Is(err, models.ErrNotRoomHost):
		return fiber.StatusForbidden, config.OnlyHostCanEnd
	case errors.Is(err, roomstate.ErrNotFound):
		return fiber.StatusNotFound, config.RoomStateNotFound
	}
	return fiber.StatusInternalServerError, err.Error()
}
