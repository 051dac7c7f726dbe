// Package transcription turns recorded audio chunks into ordered transcript
// segments through a speech to text Provider.
package transcription

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyAudio       = errors.New("empty audio chunk")
	ErrDispatcherClosed = errors.New("transcription dispatcher closed")
	ErrNotConfigured    = errors.New("speech to text provider not configured")
)

// Provider converts one audio file into text.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audio *Audio) (string, error)
}

type Audio struct {
	Data     []byte
	MimeType string
	// FileName is the name the upload carries, its extension matters to
	// some providers.
	FileName string
}

// Chunk is a slice of recorded audio. Index is assigned when the chunk is
// cut and decides the position of its text in the transcript.
type Chunk struct {
	Index     int
	Data      []byte
	MimeType  string
	CreatedAt time.Time
}
