package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func TestNewLogger_Level(t *testing.T) {
	lvl := "debug"
	logger, err := NewLogger(&config.LogSettings{LogLevel: &lvl})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger, err = NewLogger(&config.LogSettings{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	bad := "loud"
	_, err = NewLogger(&config.LogSettings{LogLevel: &bad})
	assert.Error(t, err)
}

func TestNewLogger_JSONSource(t *testing.T) {
	logger, err := NewLogger(&config.LogSettings{Format: "json"})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	logger.WithField("room", "abc-defg-hij").Info("joined")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "joined", out["msg"])
	assert.Equal(t, "abc-defg-hij", out["room"])
	assert.Contains(t, out["source"], "logging/logger_test.go:")
	assert.NotContains(t, out, "file")
	assert.NotContains(t, out, "func")
}
