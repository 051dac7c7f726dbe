package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"":          RoleStudent,
		"student":   RoleStudent,
		" Teacher ": RoleTeacher,
		"ADMIN":     RoleAdmin,
	} {
		r, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, r)
	}

	_, err := ParseRole("guest")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleGrants(t *testing.T) {
	s := RoleStudent.Grants()
	assert.True(t, s.RoomJoin)
	assert.True(t, s.CanPublish)
	assert.True(t, s.CanSubscribe)
	assert.True(t, s.CanPublishData)
	assert.False(t, s.RoomAdmin)
	assert.False(t, s.Recorder)
	assert.False(t, s.RoomRecord)

	for _, r := range []Role{RoleTeacher, RoleAdmin} {
		g := r.Grants()
		assert.True(t, g.RoomJoin)
		assert.True(t, g.RoomAdmin)
		assert.True(t, g.Recorder)
		assert.True(t, g.RoomRecord)
		assert.False(t, g.Hidden)
		assert.True(t, r.IsHost())
	}
	assert.False(t, RoleStudent.IsHost())
	assert.Equal(t, GrantBundle{}, Role("guest").Grants())
}

func TestAuthModel_IssueAndVerify(t *testing.T) {
	m := NewAuthModel(newTestAppConfig(), newTestLogger())

	cred, err := m.IssueJoinCredential("lan", "abc-defg-hij", RoleTeacher, &JoinMetadata{
		UserId: "u-1",
		Email:  "lan@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)
	assert.Equal(t, "lan", cred.Metadata.DisplayName)
	assert.Contains(t, avatarColors, cred.Metadata.AvatarColor)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), cred.ExpiresAt, 5*time.Second)

	claims, err := m.VerifyJoinCredential(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "lan", claims.Identity())
	assert.Equal(t, "lan", claims.Name)
	require.NotNil(t, claims.Video)
	assert.Equal(t, "abc-defg-hij", claims.Video.Room)
	assert.True(t, claims.Video.RoomJoin)
	assert.True(t, claims.Video.RoomAdmin)
	assert.True(t, claims.Video.Recorder)
	require.NotNil(t, claims.Video.CanPublish)
	assert.True(t, *claims.Video.CanPublish)

	md, err := claims.JoinMetadata()
	require.NoError(t, err)
	assert.Equal(t, "u-1", md.UserId)
	assert.Equal(t, RoleTeacher, md.Role)
	assert.Equal(t, "lan@example.com", md.Email)
	assert.NotEmpty(t, md.JoinedAt)

	unverified, err := ParseJoinClaimsUnverified(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "lan", unverified.Identity())
	assert.False(t, unverified.ExpiresAt().IsZero())
}

func TestAuthModel_StudentHasNoAdmin(t *testing.T) {
	m := NewAuthModel(newTestAppConfig(), newTestLogger())
	cred, err := m.IssueJoinCredential("minh", "abc-defg-hij", RoleStudent, nil)
	require.NoError(t, err)

	claims, err := m.VerifyJoinCredential(cred.Token)
	require.NoError(t, err)
	assert.False(t, claims.Video.RoomAdmin)
	assert.False(t, claims.Video.Recorder)
}

func TestAuthModel_Errors(t *testing.T) {
	app := newTestAppConfig()
	m := NewAuthModel(app, newTestLogger())

	_, err := m.IssueJoinCredential("", "abc-defg-hij", RoleStudent, nil)
	assert.ErrorIs(t, err, ErrIdentityRequired)

	_, err = m.IssueJoinCredential("lan", "abc-defg-hij", Role("guest"), nil)
	assert.ErrorIs(t, err, ErrUnknownRole)

	cred, err := m.IssueJoinCredential("lan", "abc-defg-hij", RoleStudent, nil)
	require.NoError(t, err)

	other := newTestAppConfig()
	other.LivekitInfo.Secret = "another-secret-of-enough-length-here"
	_, err = NewAuthModel(other, newTestLogger()).VerifyJoinCredential(cred.Token)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	app.LivekitInfo.Secret = ""
	_, err = m.IssueJoinCredential("lan", "abc-defg-hij", RoleStudent, nil)
	assert.ErrorIs(t, err, ErrCredentialsNotConfigured)
}
