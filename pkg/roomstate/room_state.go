// Package roomstate persists the per room recorder state (quota usage and
// transcript) so it survives restarts of the recorder.
package roomstate

import (
	"sort"
	"time"
)

const KeyPrefix = "classroom_room_"

// Key returns the storage key of a room, classroom_room_<code>.
func Key(roomCode string) string {
	return KeyPrefix + roomCode
}

type Segment struct {
	Id   string `json:"id"`
	Text string `json:"text"`
	// Order is the index of the audio chunk the text came from.
	Order int `json:"order"`
	// Timestamp is a display label of when the segment was produced.
	Timestamp       string `json:"timestamp"`
	SpeakerIdentity string `json:"speakerIdentity,omitempty"`
	SpeakerName     string `json:"speakerName,omitempty"`
}

type RoomState struct {
	RoomCode string `json:"roomCode"`
	// TotalUsedTime is the recording time consumed so far, in milliseconds.
	TotalUsedTime int64     `json:"totalUsedTime"`
	Transcript    []Segment `json:"transcript"`
	// LastUpdated is a unix timestamp in milliseconds.
	LastUpdated int64 `json:"lastUpdated"`
}

func newRoomState(roomCode string, now time.Time) *RoomState {
	return &RoomState{
		RoomCode:    roomCode,
		Transcript:  []Segment{},
		LastUpdated: now.UnixMilli(),
	}
}

func (s *RoomState) TotalUsed() time.Duration {
	return time.Duration(s.TotalUsedTime) * time.Millisecond
}

// NextOrder is one past the highest stored segment order.
func (s *RoomState) NextOrder() int {
	next := 0
	for _, seg := range s.Transcript {
		if seg.Order >= next {
			next = seg.Order + 1
		}
	}
	return next
}

func (s *RoomState) expired(now time.Time, expiry time.Duration) bool {
	if expiry <= 0 {
		return false
	}
	return now.Sub(time.UnixMilli(s.LastUpdated)) > expiry
}

// Patch carries the fields to change; nil fields keep their stored value.
type Patch struct {
	TotalUsed  *time.Duration
	Transcript []Segment
	// ClearTranscript replaces the transcript with an empty one.
	ClearTranscript bool
}

func (p Patch) apply(s *RoomState) {
	if p.TotalUsed != nil {
		s.TotalUsedTime = p.TotalUsed.Milliseconds()
	}
	switch {
	case p.ClearTranscript:
		s.Transcript = []Segment{}
	case p.Transcript != nil:
		s.Transcript = SortSegments(p.Transcript)
	}
}

// SortSegments returns a copy of segs ordered by chunk order.
func SortSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	copy(out, segs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// InsertSegment places seg by its order and returns the new slice.
func InsertSegment(segs []Segment, seg Segment) []Segment {
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].Order > seg.Order
	})
	out := make([]Segment, 0, len(segs)+1)
	out = append(out, segs[:i]...)
	out = append(out, seg)
	out = append(out, segs[i:]...)
	return out
}

// ReplaceSegment inserts seg by its order, dropping a segment that already
// holds the same order.
func ReplaceSegment(segs []Segment, seg Segment) []Segment {
	out := make([]Segment, 0, len(segs)+1)
	for _, s := range segs {
		if s.Order != seg.Order {
			out = append(out, s)
		}
	}
	return InsertSegment(out, seg)
}
