package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
)

// OpenAIProvider talks to any OpenAI compatible transcription endpoint,
// Groq by default.
type OpenAIProvider struct {
	client      openai.Client
	model       string
	language    string
	temperature float64
	logger      *logrus.Entry
}

func NewProvider(cnf *config.TranscriptionInfo, log *logrus.Entry) (transcription.Provider, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("openai provider requires api_key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cnf.ApiKey),
		option.WithMaxRetries(2),
	}
	if cnf.BaseUrl != "" {
		base := cnf.BaseUrl
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       cnf.Model,
		language:    cnf.Language,
		temperature: cnf.Temperature,
		logger:      log.WithField("provider", "openai"),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Transcribe(ctx context.Context, audio *transcription.Audio) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(audio.Data), audio.FileName, audio.MimeType),
		Model:          openai.AudioModel(p.model),
		Temperature:    openai.Float(p.temperature),
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	if p.language != "" {
		params.Language = openai.String(p.language)
	}

	res, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription request failed: %w", err)
	}
	return res.Text, nil
}
