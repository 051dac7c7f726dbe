package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/services/userservice"
)

const (
	testApiKey = "plugin"
	testSecret = "zumyyYWqv7KR2kUqvYdq4z4sXg7XTBD2ljT6"
)

func newTestAppConfig(t *testing.T, mutate func(cnf *config.AppConfig)) *config.AppConfig {
	t.Helper()
	cnf := &config.AppConfig{
		Client: config.ClientInfo{
			ApiKey: testApiKey,
			Secret: testSecret,
		},
		LivekitInfo: config.LivekitInfo{
			Host:   "ws://localhost:7880",
			ApiKey: "devkey",
			Secret: "a-very-long-secret-for-testing-purposes",
		},
	}
	if mutate != nil {
		mutate(cnf)
	}
	cnf, err := config.New(cnf)
	require.NoError(t, err)

	l := logrus.New()
	l.SetOutput(io.Discard)
	cnf.Logger = l
	return cnf
}

type testServer struct {
	app       *fiber.App
	cnf       *config.AppConfig
	roomModel *models.RoomModel
	authModel *models.AuthModel
	store     *roomstate.Store
}

func setupApp(t *testing.T, cnf *config.AppConfig) *testServer {
	t.Helper()
	logger := cnf.Logger

	b, err := roomstate.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	store := roomstate.NewStore(b, cnf.RecorderSettings.StateStore.Expiry, roomcode.New(cnf.RoomSettings.CodeCase), logger)

	rm := models.NewRoomModel(cnf, nil, nil, logger)
	am := models.NewAuthModel(cnf, logger)
	us := userservice.New(cnf, logger)

	authController := NewAuthController(cnf)
	tokenController := NewTokenController(cnf, rm, am, us, logger)
	roomController := NewRoomController(cnf, rm, nil, store, logger)
	healthController := NewHealthCheckController(cnf)
	transcriptController := NewTranscriptController(cnf, rm, store, logger)

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Get("/health", healthController.HandleHealthCheck)
	app.Get("/token", tokenController.HandleGetToken)
	app.Get("/checkRoom", roomController.HandleCheckRoom)
	app.Post("/meeting/create", roomController.HandleMeetingCreate)
	app.Post("/meeting/end/:roomCode", roomController.HandleEndRoom)

	app.Post("/transcript/save", transcriptController.HandleSaveSegment)
	app.Post("/transcript/save-batch", transcriptController.HandleSaveSegments)
	app.Get("/transcript/:roomCode", transcriptController.HandleGetTranscript)
	app.Delete("/transcript/:roomCode", transcriptController.HandleDeleteTranscript)

	admin := app.Group("/admin", authController.HandleAuthHeaderCheck)
	admin.Post("/rooms", roomController.HandleListRooms)
	admin.Post("/room/delete", roomController.HandleDeleteRoom)
	admin.Post("/room/state", roomController.HandleRoomState)

	return &testServer{
		app:       app,
		cnf:       cnf,
		roomModel: rm,
		authModel: am,
		store:     store,
	}
}

// do sends the request and decodes a json response into out when given.
func (s *testServer) do(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func signedRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, path, body)
	b, err := json.Marshal(body)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(b)
	req.Header.Set("API-KEY", testApiKey)
	req.Header.Set("HASH-SIGNATURE", hex.EncodeToString(mac.Sum(nil)))
	return req
}
