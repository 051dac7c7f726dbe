package transcriptionservice

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
)

func TestNewProvider(t *testing.T) {
	logger := logrus.New()

	p, err := NewProvider(context.Background(), &config.TranscriptionInfo{
		Provider: config.TranscriptionProviderOpenAI,
		ApiKey:   "key",
		BaseUrl:  config.DefaultTranscriptionBaseUrl,
		Model:    config.DefaultTranscriptionModel,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(context.Background(), &config.TranscriptionInfo{
		Provider: config.TranscriptionProviderGoogle,
		ApiKey:   "key",
		Model:    config.DefaultGoogleTranscriptionModel,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	_, err = NewProvider(context.Background(), &config.TranscriptionInfo{Provider: "azure"}, logger)
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), &config.TranscriptionInfo{Provider: config.TranscriptionProviderOpenAI}, logger)
	assert.Error(t, err)
}
