package roomstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
)

var ErrNotFound = errors.New("room state not found")

// Backend stores raw state values by key.
type Backend interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locker is implemented by backends shared between processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Purger is implemented by backends that don't expire values on their own.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time, expiry time.Duration) (int, error)
}

// Store is the load or init, merge and write layer over a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	expiry  time.Duration
	codes   *roomcode.Rules
	clock   clock.Clock
	logger  *logrus.Entry
}

// NewStore keys records by the normalized room code. Nil codes means the
// lower case convention.
func NewStore(backend Backend, expiry time.Duration, codes *roomcode.Rules, logger *logrus.Logger) *Store {
	if codes == nil {
		codes = roomcode.New("")
	}
	return &Store{
		backend: backend,
		expiry:  expiry,
		codes:   codes,
		clock:   clock.New(),
		logger:  logger.WithField("model", "roomstate"),
	}
}

// Load returns the stored state of roomCode. A missing, corrupt or expired
// record is replaced by a fresh empty state, which is written back.
func (s *Store) Load(ctx context.Context, roomCode string) (*RoomState, error) {
	roomCode, err := s.codes.Normalize(roomCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, fresh, err := s.read(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if fresh {
		if err = s.write(ctx, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Get returns the stored state without creating one. Missing, corrupt and
// expired records give ErrNotFound.
func (s *Store) Get(ctx context.Context, roomCode string) (*RoomState, error) {
	roomCode, err := s.codes.Normalize(roomCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, fresh, err := s.read(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if fresh {
		return nil, ErrNotFound
	}
	return st, nil
}

// Save merges p into the stored state and writes it.
func (s *Store) Save(ctx context.Context, roomCode string, p Patch) (*RoomState, error) {
	return s.update(ctx, roomCode, p.apply)
}

// UpsertSegments adds segs to the transcript. A stored segment with the
// same order is replaced.
func (s *Store) UpsertSegments(ctx context.Context, roomCode string, segs []Segment) (*RoomState, error) {
	return s.update(ctx, roomCode, func(st *RoomState) {
		for _, seg := range segs {
			st.Transcript = ReplaceSegment(st.Transcript, seg)
		}
	})
}

func (s *Store) update(ctx context.Context, roomCode string, fn func(*RoomState)) (*RoomState, error) {
	roomCode, err := s.codes.Normalize(roomCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, _, err := s.read(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	fn(st)
	if err = s.write(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Clear removes the record, used once a room is closed for good.
func (s *Store) Clear(ctx context.Context, roomCode string) error {
	roomCode, err := s.codes.Normalize(roomCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.backend.Delete(ctx, Key(roomCode))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.WithField("roomCode", roomCode).Infoln("cleared room state")
	return nil
}

// PurgeExpired drops expired records from backends that keep them forever.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	p, ok := s.backend.(Purger)
	if !ok {
		return 0, nil
	}
	return p.PurgeExpired(ctx, s.clock.Now(), s.expiry)
}

func (s *Store) lock(ctx context.Context, roomCode string) (func(), error) {
	l, ok := s.backend.(Locker)
	if !ok {
		return func() {}, nil
	}
	return l.Lock(ctx, Key(roomCode))
}

// read never fails on bad data, only on backend errors.
func (s *Store) read(ctx context.Context, roomCode string) (st *RoomState, fresh bool, err error) {
	now := s.clock.Now()
	log := s.logger.WithField("roomCode", roomCode)

	data, err := s.backend.Get(ctx, Key(roomCode))
	switch {
	case errors.Is(err, ErrNotFound):
		return newRoomState(roomCode, now), true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to read room state: %w", err)
	}

	st = new(RoomState)
	if err = json.Unmarshal(data, st); err != nil {
		log.WithError(err).Warnln("corrupt room state, starting fresh")
		return newRoomState(roomCode, now), true, nil
	}
	if st.expired(now, s.expiry) {
		log.Infoln("room state expired, starting fresh")
		return newRoomState(roomCode, now), true, nil
	}

	st.RoomCode = roomCode
	if st.TotalUsedTime < 0 {
		st.TotalUsedTime = 0
	}
	if st.Transcript == nil {
		st.Transcript = []Segment{}
	}
	return st, false, nil
}

func (s *Store) write(ctx context.Context, st *RoomState) error {
	st.LastUpdated = s.clock.Now().UnixMilli()
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err = s.backend.Put(ctx, Key(st.RoomCode), data, s.expiry); err != nil {
		return fmt.Errorf("failed to write room state: %w", err)
	}
	return nil
}
