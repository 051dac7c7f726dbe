package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/userservice"
)

// TokenController issues join credentials and registers the joiner.
type TokenController struct {
	AppConfig   *config.AppConfig
	RoomModel   *models.RoomModel
	AuthModel   *models.AuthModel
	UserService *userservice.UserService
	logger      *logrus.Entry
}

func NewTokenController(config *config.AppConfig, rm *models.RoomModel, am *models.AuthModel, us *userservice.UserService, logger *logrus.Logger) *TokenController {
	return &TokenController{
		AppConfig:   config,
		RoomModel:   rm,
		AuthModel:   am,
		UserService: us,
		logger:      logger.WithField("controller", "token"),
	}
}

type TokenResponse struct {
	Url         string                `json:"url"`
	Token       string                `json:"token"`
	Identity    string                `json:"identity"`
	DisplayName string                `json:"displayName"`
	RoomName    string                `json:"roomName"`
	Role        models.Role           `json:"role"`
	AvatarColor string                `json:"avatarColor"`
	ExpiresAt   time.Time             `json:"expiresAt"`
	IsHost      bool                  `json:"isHost"`
	UserInfo    *userservice.UserInfo `json:"userInfo,omitempty"`
}

// HandleGetToken handles GET /token?room=&user=&userId=&role=
func (tc *TokenController) HandleGetToken(c *fiber.Ctx) error {
	room := strings.TrimSpace(c.Query("room"))
	user := strings.TrimSpace(c.Query("user"))
	userId := strings.TrimSpace(c.Query("userId"))

	if room == "" {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.RoomCodeRequired)
	}
	if user == "" {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.UserRequired)
	}
	role, err := models.ParseRole(c.Query("role"))
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}
	code, err := tc.RoomModel.NormalizeCode(room)
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}
	if !tc.AppConfig.LivekitInfo.IsConfigured() {
		return sendCommonJsonResponse(c, fiber.StatusServiceUnavailable, false, config.LivekitNotConfigured)
	}

	var userInfo *userservice.UserInfo
	if userId != "" && tc.UserService != nil && tc.UserService.Enabled() {
		userInfo, err = tc.UserService.GetPublicUser(c.UserContext(), userId)
		if err != nil {
			// profile details are optional
			tc.logger.WithError(err).WithField("userId", userId).Warnln("user lookup failed")
		}
	}

	meta := &models.JoinMetadata{
		UserId:      userId,
		DisplayName: userInfo.DisplayName(user),
	}
	if userInfo != nil {
		meta.Email = userInfo.Email
	}

	cred, err := tc.AuthModel.IssueJoinCredential(user, code, role, meta)
	if err != nil {
		status, msg := errorStatus(err)
		if status == fiber.StatusInternalServerError {
			tc.logger.WithError(err).WithField("roomCode", code).Errorln("failed to issue join credential")
			msg = config.FailedToGenerateToken
		}
		return sendCommonJsonResponse(c, status, false, msg)
	}

	creatorId := userId
	if creatorId == "" {
		creatorId = user
	}
	entry, _, err := tc.RoomModel.Join(code, creatorId, models.Participant{
		Identity:    cred.Identity,
		UserId:      userId,
		DisplayName: cred.Metadata.DisplayName,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	})
	if err != nil {
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}

	return c.JSON(&TokenResponse{
		Url:         tc.AppConfig.LivekitInfo.Host,
		Token:       cred.Token,
		Identity:    cred.Identity,
		DisplayName: cred.Metadata.DisplayName,
		RoomName:    cred.RoomCode,
		Role:        cred.Role,
		AvatarColor: cred.Metadata.AvatarColor,
		ExpiresAt:   cred.ExpiresAt,
		IsHost:      entry.IsHost(creatorId),
		UserInfo:    userInfo,
	})
}
