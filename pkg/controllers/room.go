package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
	livekitservice "github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/livekit"
)

// RoomController holds dependencies for room-related handlers.
type RoomController struct {
	AppConfig      *config.AppConfig
	RoomModel      *models.RoomModel
	LivekitService *livekitservice.LivekitService
	StateStore     *roomstate.Store
	logger         *logrus.Entry
}

func NewRoomController(config *config.AppConfig, rm *models.RoomModel, lk *livekitservice.LivekitService, store *roomstate.Store, logger *logrus.Logger) *RoomController {
	return &RoomController{
		AppConfig:      config,
		RoomModel:      rm,
		LivekitService: lk,
		StateStore:     store,
		logger:         logger.WithField("controller", "room"),
	}
}

type checkRoomResponse struct {
	*models.RoomExistence
	Error string `json:"error,omitempty"`
}

// HandleCheckRoom handles GET /checkRoom?room=
func (rc *RoomController) HandleCheckRoom(c *fiber.Ctx) error {
	room := strings.TrimSpace(c.Query("room"))
	if room == "" {
		return c.Status(fiber.StatusBadRequest).JSON(&checkRoomResponse{
			RoomExistence: &models.RoomExistence{},
			Error:         config.RoomCodeRequired,
		})
	}

	res, err := rc.RoomModel.Exists(c.UserContext(), room)
	if err != nil {
		status, msg := errorStatus(err)
		return c.Status(status).JSON(&checkRoomResponse{
			RoomExistence: &models.RoomExistence{RoomCode: room},
			Error:         msg,
		})
	}

	r := &checkRoomResponse{RoomExistence: res}
	if !res.Exists {
		r.Error = config.RoomNotFound
	}
	return c.JSON(r)
}

type CreateMeetingReq struct {
	RoomCode string `json:"roomCode"`
	UserId   string `json:"userId"`
}

type createMeetingRes struct {
	Success   bool      `json:"success"`
	RoomCode  string    `json:"roomCode"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandleMeetingCreate handles POST /meeting/create. A missing roomCode gets
// a generated one.
func (rc *RoomController) HandleMeetingCreate(c *fiber.Ctx) error {
	req := new(CreateMeetingReq)
	if err := c.BodyParser(req); err != nil {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, err.Error())
	}
	req.UserId = strings.TrimSpace(req.UserId)
	if req.UserId == "" {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.UserIdRequired)
	}

	code := strings.TrimSpace(req.RoomCode)
	if code == "" {
		var err error
		code, err = rc.RoomModel.GenerateCode()
		if err != nil {
			return sendCommonJsonResponse(c, fiber.StatusInternalServerError, false, err.Error())
		}
	}

	entry, err := rc.RoomModel.Create(code, req.UserId)
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}

	return c.Status(fiber.StatusCreated).JSON(&createMeetingRes{
		Success:   true,
		RoomCode:  entry.Code,
		CreatedAt: entry.CreatedAt,
	})
}

type roomsListRes struct {
	Status bool               `json:"status"`
	Msg    string             `json:"msg"`
	Rooms  []models.RoomEntry `json:"rooms"`
}

// HandleListRooms lists every room the registry tracks.
func (rc *RoomController) HandleListRooms(c *fiber.Ctx) error {
	return c.JSON(&roomsListRes{
		Status: true,
		Msg:    "success",
		Rooms:  rc.RoomModel.List(),
	})
}

type roomCodeReq struct {
	RoomCode string `json:"roomCode"`
}

// parseRoomCode returns an empty code when the request was rejected, the
// response is written by then.
func (rc *RoomController) parseRoomCode(c *fiber.Ctx) (string, error) {
	req := new(roomCodeReq)
	if err := c.BodyParser(req); err != nil {
		return "", sendCommonJsonResponse(c, fiber.StatusBadRequest, false, err.Error())
	}
	code, err := rc.RoomModel.NormalizeCode(req.RoomCode)
	if err != nil {
		status, msg := errorStatus(err)
		return "", sendCommonJsonResponse(c, status, false, msg)
	}
	return code, nil
}

// HandleDeleteRoom removes a room from the registry, ends it on livekit and
// drops its persisted state.
func (rc *RoomController) HandleDeleteRoom(c *fiber.Ctx) error {
	code, err := rc.parseRoomCode(c)
	if code == "" {
		return err
	}

	ok, err := rc.RoomModel.Delete(code)
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}
	if !ok {
		return sendCommonJsonResponse(c, fiber.StatusNotFound, false, config.RoomNotFound)
	}

	rc.teardown(c, code)
	return sendCommonJsonResponse(c, fiber.StatusOK, true, "success")
}

// teardown ends the livekit room and drops persisted state. Failures are
// logged only, the registry entry is already gone.
func (rc *RoomController) teardown(c *fiber.Ctx, code string) {
	log := rc.logger.WithField("roomCode", code)
	if rc.LivekitService.Configured() {
		if err := rc.LivekitService.EndRoom(code); err != nil {
			log.WithError(err).Warnln("failed to end livekit room")
		}
	}
	if rc.StateStore != nil {
		if err := rc.StateStore.Clear(c.UserContext(), code); err != nil {
			log.WithError(err).Warnln("failed to clear room state")
		}
	}
}

type EndMeetingReq struct {
	UserId string `json:"userId"`
}

type endMeetingRes struct {
	Success  bool   `json:"success"`
	Msg      string `json:"msg"`
	RoomCode string `json:"roomCode"`
}

// HandleEndRoom handles POST /meeting/end/:roomCode. Only the user who
// created the room may end it.
func (rc *RoomController) HandleEndRoom(c *fiber.Ctx) error {
	req := new(EndMeetingReq)
	if err := c.BodyParser(req); err != nil {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, err.Error())
	}
	req.UserId = strings.TrimSpace(req.UserId)
	if req.UserId == "" {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.UserIdRequired)
	}

	entry, err := rc.RoomModel.End(c.Params("roomCode"), req.UserId)
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}

	rc.teardown(c, entry.Code)
	return c.JSON(&endMeetingRes{
		Success:  true,
		Msg:      "room ended",
		RoomCode: entry.Code,
	})
}

type roomStateRes struct {
	Status bool                 `json:"status"`
	Msg    string               `json:"msg"`
	State  *roomstate.RoomState `json:"state,omitempty"`
}

// HandleRoomState returns the persisted recording usage and transcript. It
// never creates a record.
func (rc *RoomController) HandleRoomState(c *fiber.Ctx) error {
	code, err := rc.parseRoomCode(c)
	if code == "" {
		return err
	}
	if rc.StateStore == nil {
		return sendCommonJsonResponse(c, fiber.StatusServiceUnavailable, false, "room state store not configured")
	}

	st, err := rc.StateStore.Get(c.UserContext(), code)
	if errors.Is(err, roomstate.ErrNotFound) {
		return sendCommonJsonResponse(c, fiber.StatusNotFound, false, config.RoomStateNotFound)
	}
	if err != nil {
		rc.logger.WithError(err).WithField("roomCode", code).Errorln("failed to load room state")
		return sendCommonJsonResponse(c, fiber.StatusInternalServerError, false, err.Error())
	}

	return c.JSON(&roomStateRes{
		Status: true,
		Msg:    "success",
		State:  st,
	})
}
