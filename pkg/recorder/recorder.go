// Package recorder drives quota limited recording sessions: it cuts captured
// audio into chunks, hands them to transcription and keeps the room state
// persisted.
package recorder

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
)

var (
	ErrQuotaExhausted = errors.New("recording quota exhausted for this room")
	ErrNoAudioSource  = errors.New("no audio source available")
	ErrNotConfigured  = errors.New("transcription not configured")
	ErrClosed         = errors.New("recorder closed")
)

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
)

// AudioSource captures audio. Open must deliver data to sink from its own
// goroutine until the returned closer is closed.
type AudioSource interface {
	Open(sink func([]byte)) (io.Closer, error)
	// Encode turns buffered raw data into one self contained audio file.
	Encode(raw []byte) (data []byte, mimeType string)
}

type Dispatcher interface {
	Dispatch(chunk *transcription.Chunk, onDone func(*transcription.Result)) error
	InFlight() int
	Close(abort bool)
}

type StateStore interface {
	Load(ctx context.Context, roomCode string) (*roomstate.RoomState, error)
	Save(ctx context.Context, roomCode string, p roomstate.Patch) (*roomstate.RoomState, error)
}

// Status is a point in time view of the controller.
type Status struct {
	RoomCode  string        `json:"roomCode"`
	State     State         `json:"state"`
	TotalUsed time.Duration `json:"totalUsed"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining"`
	QuotaMax  time.Duration `json:"quotaMax"`
	InFlight  int           `json:"inFlight"`
	Segments  int           `json:"segments"`
	LastError string        `json:"lastError,omitempty"`
}
