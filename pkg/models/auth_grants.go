package models

import (
	"strings"

	"github.com/livekit/protocol/auth"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole maps the request value to a Role. Empty means student.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RoleStudent, nil
	case RoleStudent, RoleTeacher, RoleAdmin:
		return r, nil
	default:
		return "", ErrUnknownRole
	}
}

// GrantBundle is the set of permissions a role receives in a room.
type GrantBundle struct {
	RoomJoin       bool `json:"roomJoin"`
	CanPublish     bool `json:"canPublish"`
	CanSubscribe   bool `json:"canSubscribe"`
	CanPublishData bool `json:"canPublishData"`
	RoomAdmin      bool `json:"roomAdmin"`
	RoomRecord     bool `json:"roomRecord"`
	Recorder       bool `json:"recorder"`
	Hidden         bool `json:"hidden"`
}

var (
	participantGrants = GrantBundle{
		RoomJoin:       true,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}
	hostGrants = GrantBundle{
		RoomJoin:       true,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
		RoomAdmin:      true,
		RoomRecord:     true,
		Recorder:       true,
	}

	roleGrants = map[Role]GrantBundle{
		RoleStudent: participantGrants,
		RoleTeacher: hostGrants,
		RoleAdmin:   hostGrants,
	}
)

// Grants returns the bundle for r. Unknown roles get nothing.
func (r Role) Grants() GrantBundle {
	return roleGrants[r]
}

func (r Role) IsHost() bool {
	return r.Grants().RoomAdmin
}

func (g GrantBundle) videoGrant(roomCode string) *auth.VideoGrant {
	vg := &auth.VideoGrant{
		Room:       roomCode,
		RoomJoin:   g.RoomJoin,
		RoomAdmin:  g.RoomAdmin,
		RoomRecord: g.RoomRecord,
		Recorder:   g.Recorder,
		Hidden:     g.Hidden,
	}
	vg.SetCanPublish(g.CanPublish)
	vg.SetCanSubscribe(g.CanSubscribe)
	vg.SetCanPublishData(g.CanPublishData)
	return vg
}
