package models

import (
	"errors"

	"github.com/pion/randutil"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

var (
	ErrCredentialsNotConfigured = errors.New("livekit credentials not configured")
	ErrUnknownRole              = errors.New("unknown role")
	ErrIdentityRequired         = errors.New("identity is required")
)

var avatarColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
	"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
}

type AuthModel struct {
	app    *config.AppConfig
	rand   randutil.MathRandomGenerator
	logger *logrus.Entry
}

func NewAuthModel(app *config.AppConfig, logger *logrus.Logger) *AuthModel {
	return &AuthModel{
		app:    app,
		rand:   randutil.NewMathRandomGenerator(),
		logger: logger.WithField("model", "auth"),
	}
}

func (m *AuthModel) randomAvatarColor() string {
	return avatarColors[m.rand.Intn(len(avatarColors))]
}
