package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cnf, err := New(&AppConfig{RootWorkingDir: "/srv/classroom"})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cnf.Client.Port)
	assert.Equal(t, 10*time.Minute, cnf.LivekitInfo.TokenValidity)
	assert.Equal(t, CodeCaseLower, cnf.RoomSettings.CodeCase)
	assert.Equal(t, 5*time.Minute, cnf.RoomSettings.EvictionInterval)
	assert.Equal(t, time.Hour, cnf.RoomSettings.RoomTTL)

	rc := cnf.RecorderSettings
	assert.Equal(t, 10*time.Minute, rc.Quota)
	assert.Equal(t, time.Second, rc.TickInterval)
	assert.Equal(t, 30*time.Second, rc.FlushInterval)
	assert.Equal(t, StateStoreFile, rc.StateStore.Driver)
	assert.Equal(t, 24*time.Hour, rc.StateStore.Expiry)
	assert.Equal(t, "/srv/classroom/room_state", rc.StateStore.Path)
	assert.Equal(t, CaptureSourceFFmpeg, rc.Capture.Source)

	ti := cnf.TranscriptionInfo
	assert.Equal(t, TranscriptionProviderOpenAI, ti.Provider)
	assert.Equal(t, DefaultTranscriptionBaseUrl, ti.BaseUrl)
	assert.Equal(t, "whisper-large-v3", ti.Model)
	assert.Equal(t, "vi", ti.Language)
	assert.Equal(t, DefaultTranscriptionWorkers, ti.MaxWorkers)
}

func TestNew_InvalidCodeCase(t *testing.T) {
	_, err := New(&AppConfig{RoomSettings: RoomSettings{CodeCase: "title"}})
	assert.Error(t, err)

	cnf, err := New(&AppConfig{RoomSettings: RoomSettings{CodeCase: "UPPER"}})
	require.NoError(t, err)
	assert.Equal(t, CodeCaseUpper, cnf.RoomSettings.CodeCase)
}

func TestNew_QuotaIsCapped(t *testing.T) {
	cnf, err := New(&AppConfig{RecorderSettings: RecorderSettings{Quota: time.Hour}})
	require.NoError(t, err)
	assert.Equal(t, DefaultRecordingQuota, cnf.RecorderSettings.Quota)

	cnf, err = New(&AppConfig{RecorderSettings: RecorderSettings{Quota: 2 * time.Minute}})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cnf.RecorderSettings.Quota)
}

func TestNew_InvalidCaptureSource(t *testing.T) {
	_, err := New(&AppConfig{RecorderSettings: RecorderSettings{Capture: CaptureInfo{Source: "webcam"}}})
	assert.Error(t, err)
}

func TestReadYamlConfigFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "config.yaml")
	content := `
client:
  port: 8080
  api_key: "plugin"
  secret: "secret"
livekit_info:
  host: "http://localhost:7880"
  api_key: "devkey"
  secret: "devsecret"
  token_validity: 1h
recorder_settings:
  quota: 5m
  capture:
    source: livekit
    participant: teacher-1
  state_store:
    driver: redis
transcription_info:
  provider: google
  api_key: "g-key"
  language: vi
`
	require.NoError(t, os.WriteFile(f, []byte(content), 0644))

	raw, err := ReadYamlConfigFile(f)
	require.NoError(t, err)
	cnf, err := New(raw)
	require.NoError(t, err)

	assert.Equal(t, 8080, cnf.Client.Port)
	assert.True(t, cnf.LivekitInfo.IsConfigured())
	assert.Equal(t, time.Hour, cnf.LivekitInfo.TokenValidity)
	assert.Equal(t, 5*time.Minute, cnf.RecorderSettings.Quota)
	assert.Equal(t, CaptureSourceLivekit, cnf.RecorderSettings.Capture.Source)
	assert.Equal(t, "teacher-1", cnf.RecorderSettings.Capture.Participant)
	assert.Equal(t, StateStoreRedis, cnf.RecorderSettings.StateStore.Driver)
	assert.Empty(t, cnf.RecorderSettings.StateStore.Path)
	assert.Equal(t, DefaultGoogleTranscriptionModel, cnf.TranscriptionInfo.Model)
	assert.Empty(t, cnf.TranscriptionInfo.BaseUrl)

	_, err = ReadYamlConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
