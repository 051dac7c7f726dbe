package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomAudioSource_OpenNeedsTrack(t *testing.T) {
	s := NewRoomAudioSource("", 16000, newTestLogger())
	_, err := s.Open(func([]byte) {})
	assert.ErrorIs(t, err, errNoRoomAudio)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitForTrack(ctx), context.DeadlineExceeded)
}

func TestPCM16Bytes(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80}, pcm16Bytes([]int16{1, -1, -32768}))
}
