package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func newTestService(url string) *UserService {
	app := &config.AppConfig{}
	app.UserServiceInfo.Url = url
	app.UserServiceInfo.Timeout = time.Second
	return New(app, logrus.New())
}

func TestUserService_GetPublicUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/public/u1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":1000,"result":{"id":"u1","username":"lan","fullName":"Nguyen Lan","email":"lan@example.com"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newTestService(srv.URL + "/")
	require.True(t, s.Enabled())

	info, err := s.GetPublicUser(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "lan@example.com", info.Email)
	assert.Equal(t, "Nguyen Lan", info.DisplayName("fallback"))

	info, err = s.GetPublicUser(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, "fallback", info.DisplayName("fallback"))
}

func TestUserService_Disabled(t *testing.T) {
	s := newTestService("")
	assert.False(t, s.Enabled())
	_, err := s.GetPublicUser(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrUserServiceDisabled)
}

func TestUserInfo_DisplayName(t *testing.T) {
	assert.Equal(t, "lan", (&UserInfo{Username: "lan"}).DisplayName("x"))
	assert.Equal(t, "x", (&UserInfo{FullName: "  "}).DisplayName("x"))
}
