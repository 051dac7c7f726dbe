package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/livekit/protocol/auth"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/metrics"
)

// JoinMetadata is embedded in the token as participant metadata.
type JoinMetadata struct {
	UserId      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	AvatarColor string `json:"avatarColor"`
	JoinedAt    string `json:"joinedAt"`
	Email       string `json:"email,omitempty"`
}

type JoinCredential struct {
	Identity  string
	RoomCode  string
	Role      Role
	Metadata  JoinMetadata
	Grants    GrantBundle
	Token     string
	ExpiresAt time.Time
}

// IssueJoinCredential signs a livekit access token for identity in roomCode.
// It has no effect on the room registry. meta may be nil; missing display
// name, avatar color and join time are filled in.
func (m *AuthModel) IssueJoinCredential(identity, roomCode string, role Role, meta *JoinMetadata) (*JoinCredential, error) {
	info := m.app.LivekitInfo
	if info.ApiKey == "" || info.Secret == "" {
		return nil, ErrCredentialsNotConfigured
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, ErrIdentityRequired
	}
	if _, ok := roleGrants[role]; !ok {
		return nil, ErrUnknownRole
	}

	md := JoinMetadata{}
	if meta != nil {
		md = *meta
	}
	now := time.Now().UTC()
	md.Role = role
	if md.DisplayName == "" {
		md.DisplayName = identity
	}
	if md.AvatarColor == "" {
		md.AvatarColor = m.randomAvatarColor()
	}
	if md.JoinedAt == "" {
		md.JoinedAt = now.Format(time.RFC3339Nano)
	}

	mdJson, err := json.Marshal(md)
	if err != nil {
		return nil, err
	}

	grants := role.Grants()
	at := auth.NewAccessToken(info.ApiKey, info.Secret)
	at.AddGrant(grants.videoGrant(roomCode)).
		SetIdentity(identity).
		SetName(md.DisplayName).
		SetMetadata(string(mdJson)).
		SetValidFor(info.TokenValidity)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(string(role)).Inc()
	m.logger.WithFields(logrus.Fields{
		"roomCode": roomCode,
		"identity": identity,
		"role":     role,
	}).Debugln("join credential issued")

	return &JoinCredential{
		Identity:  identity,
		RoomCode:  roomCode,
		Role:      role,
		Metadata:  md,
		Grants:    grants,
		Token:     token,
		ExpiresAt: now.Add(info.TokenValidity),
	}, nil
}
