package transcriptionservice

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription/providers/google"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription/providers/openai"
)

// NewProvider is a factory function that returns the configured speech to
// text provider.
func NewProvider(ctx context.Context, cnf *config.TranscriptionInfo, logger *logrus.Logger) (transcription.Provider, error) {
	log := logger.WithField("service", "transcription")

	switch cnf.Provider {
	case config.TranscriptionProviderOpenAI:
		return openai.NewProvider(cnf, log)
	case config.TranscriptionProviderGoogle:
		return google.NewProvider(ctx, cnf, log)
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cnf.Provider)
	}
}
