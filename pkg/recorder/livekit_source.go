package recorder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/livekit/media-sdk"
	lksdk "github.com/livekit/server-sdk-go/v2"
	lkmedia "github.com/livekit/server-sdk-go/v2/pkg/media"
	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

var errNoRoomAudio = errors.New("no audio track subscribed in the room")

// RoomAudioSource records one participant's microphone from the livekit
// room the agent joined. An empty speaker follows the first audio track.
type RoomAudioSource struct {
	mu         sync.Mutex
	speaker    string
	sampleRate int
	active     *roomTrack
	sink       func([]byte)
	ready      chan struct{}
	readyOnce  sync.Once
	logger     *logrus.Entry
}

func NewRoomAudioSource(speaker string, sampleRate int, logger *logrus.Logger) *RoomAudioSource {
	return &RoomAudioSource{
		speaker:    speaker,
		sampleRate: sampleRate,
		ready:      make(chan struct{}),
		logger:     logger.WithField("source", "livekit"),
	}
}

// Callback is passed to the room connection so the source sees tracks.
func (s *RoomAudioSource) Callback() *lksdk.RoomCallback {
	cb := lksdk.NewRoomCallback()
	cb.OnTrackPublished = s.onTrackPublished
	cb.OnTrackSubscribed = s.onTrackSubscribed
	cb.OnTrackUnsubscribed = s.onTrackUnsubscribed
	cb.OnDisconnected = func() {
		s.logger.Infoln("disconnected from livekit room")
		s.closeActive()
	}
	return cb
}

func (s *RoomAudioSource) wants(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return false
	}
	return s.speaker == "" || s.speaker == identity
}

func (s *RoomAudioSource) onTrackPublished(pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	if pub.Kind() != lksdk.TrackKindAudio || !s.wants(rp.Identity()) {
		return
	}
	if err := pub.SetSubscribed(true); err != nil {
		s.logger.WithError(err).WithField("identity", rp.Identity()).Warnln("failed to subscribe audio track")
	}
}

func (s *RoomAudioSource) onTrackSubscribed(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	if track.Codec().MimeType != webrtc.MimeTypeOpus || !s.wants(rp.Identity()) {
		return
	}

	w := &roomTrack{source: s, identity: rp.Identity()}
	pcmTrack, err := lkmedia.NewPCMRemoteTrack(track, w, lkmedia.WithTargetSampleRate(s.sampleRate))
	if err != nil {
		s.logger.WithError(err).Errorln("failed to decode room audio")
		return
	}
	w.pcmTrack = pcmTrack

	s.mu.Lock()
	s.active = w
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.WithField("identity", rp.Identity()).Infoln("recording room audio")
}

func (s *RoomAudioSource) onTrackUnsubscribed(_ *webrtc.TrackRemote, _ *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	s.mu.Lock()
	w := s.active
	if w == nil || w.identity != rp.Identity() {
		s.mu.Unlock()
		return
	}
	s.active = nil
	s.mu.Unlock()

	w.pcmTrack.Close()
	s.logger.WithField("identity", rp.Identity()).Infoln("room audio track gone")
}

func (s *RoomAudioSource) closeActive() {
	s.mu.Lock()
	w := s.active
	s.active = nil
	s.mu.Unlock()
	if w != nil {
		w.pcmTrack.Close()
	}
}

// WaitForTrack blocks until an audio track was subscribed or ctx ends.
func (s *RoomAudioSource) WaitForTrack(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errNoRoomAudio, ctx.Err())
	}
}

// Open starts forwarding samples to sink. It fails while no track is
// subscribed.
func (s *RoomAudioSource) Open(sink func([]byte)) (io.Closer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errNoRoomAudio
	}
	s.sink = sink
	return closerFunc(func() error {
		s.mu.Lock()
		s.sink = nil
		s.mu.Unlock()
		return nil
	}), nil
}

func (s *RoomAudioSource) Encode(raw []byte) ([]byte, string) {
	return wavEncode(raw, s.sampleRate, 1, 16), "audio/wav"
}

func (s *RoomAudioSource) deliver(sample media.PCM16Sample) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return
	}
	sink(pcm16Bytes(sample))
}

// roomTrack receives decoded samples of one subscribed track.
type roomTrack struct {
	source   *RoomAudioSource
	identity string
	pcmTrack *lkmedia.PCMRemoteTrack
}

func (w *roomTrack) WriteSample(sample media.PCM16Sample) error {
	w.source.deliver(sample)
	return nil
}

func (w *roomTrack) Close() error {
	return nil
}

func (w *roomTrack) SampleRate() int {
	return w.source.sampleRate
}

func (w *roomTrack) String() string {
	return "RoomAudio(" + w.identity + ")"
}

func pcm16Bytes(sample media.PCM16Sample) []byte {
	out := make([]byte, len(sample)*2)
	for i, v := range sample {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
