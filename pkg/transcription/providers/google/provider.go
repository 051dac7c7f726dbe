package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
	"google.golang.org/genai"
)

const transcribePrompt = "Transcribe the speech in this audio verbatim. Reply with the transcript text only, without timestamps, speaker labels or commentary. If there is no speech, reply with an empty string."

// GoogleProvider transcribes through a Gemini model with inline audio.
type GoogleProvider struct {
	client      *genai.Client
	model       string
	language    string
	temperature float32
	logger      *logrus.Entry
}

func NewProvider(ctx context.Context, cnf *config.TranscriptionInfo, log *logrus.Entry) (transcription.Provider, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("google provider requires api_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cnf.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleProvider{
		client:      client,
		model:       cnf.Model,
		language:    cnf.Language,
		temperature: float32(cnf.Temperature),
		logger:      log.WithField("provider", "google"),
	}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) Transcribe(ctx context.Context, audio *transcription.Audio) (string, error) {
	prompt := transcribePrompt
	if p.language != "" {
		prompt += fmt.Sprintf(" The spoken language is %q.", p.language)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(audio.Data, audio.MimeType),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("google transcription request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
