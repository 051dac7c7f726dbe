package models

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomcode"
)

func TestRoomModel_GetOrCreate(t *testing.T) {
	m, mc := newTestRoomModel()

	e, created, err := m.GetOrCreate(" ABC-defg-hij ", "teacher-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "abc-defg-hij", e.Code)
	assert.Equal(t, "teacher-1", e.CreatedBy)
	assert.Equal(t, mc.Now(), e.CreatedAt)
	assert.Empty(t, e.Participants)
	assert.Equal(t, RoomSourceLocal, e.Source)

	mc.Add(time.Minute)
	again, created, err := m.GetOrCreate("abc-defg-hij", "someone-else")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, e.CreatedAt, again.CreatedAt)
	assert.Equal(t, "teacher-1", again.CreatedBy)

	_, _, err = m.GetOrCreate("ab-defg-hij", "x")
	assert.ErrorIs(t, err, roomcode.ErrInvalidRoomCode)
}

func TestRoomModel_ConcurrentGetOrCreate(t *testing.T) {
	m, _ := newTestRoomModel()

	const n = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	createdAt := make(map[time.Time]struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, created, err := m.GetOrCreate("abc-defg-hij", fmt.Sprintf("u%d", i))
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if created {
				createdCount++
			}
			createdAt[e.CreatedAt] = struct{}{}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Len(t, createdAt, 1)
	assert.Len(t, m.List(), 1)
}

func TestRoomModel_ConcurrentJoinSameIdentity(t *testing.T) {
	m, _ := newTestRoomModel()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Join("abc-defg-hij", "u1", Participant{Identity: "lan", Role: RoleStudent})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := m.Join("abc-defg-hij", "u1", Participant{Identity: fmt.Sprintf("p%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	e, ok := m.Get("abc-defg-hij")
	require.True(t, ok)
	assert.Len(t, e.Participants, 9)
}

func TestRoomModel_AppendParticipant(t *testing.T) {
	m, mc := newTestRoomModel()

	_, err := m.AppendParticipant("abc-defg-hij", Participant{Identity: "lan"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = m.Create("abc-defg-hij", "t1")
	require.NoError(t, err)

	added, err := m.AppendParticipant("abc-defg-hij", Participant{Identity: "lan", DisplayName: "Lan"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.AppendParticipant("abc-defg-hij", Participant{Identity: "lan", DisplayName: "Other"})
	require.NoError(t, err)
	assert.False(t, added)

	e, ok := m.Get("abc-defg-hij")
	require.True(t, ok)
	require.Len(t, e.Participants, 1)
	assert.Equal(t, "Lan", e.Participants[0].DisplayName)
	assert.Equal(t, mc.Now(), e.Participants[0].JoinedAt)
}

func TestRoomModel_ReturnsCopies(t *testing.T) {
	m, _ := newTestRoomModel()
	e, _, err := m.Join("abc-defg-hij", "t1", Participant{Identity: "lan"})
	require.NoError(t, err)

	e.Participants[0].Identity = "mutated"
	e.Participants = append(e.Participants, Participant{Identity: "ghost"})

	fresh, _ := m.Get("abc-defg-hij")
	require.Len(t, fresh.Participants, 1)
	assert.Equal(t, "lan", fresh.Participants[0].Identity)
}

func TestRoomModel_Create(t *testing.T) {
	m, _ := newTestRoomModel()

	_, err := m.Create("abc-defg-hij", "t1")
	require.NoError(t, err)
	_, err = m.Create("ABC-DEFG-HIJ", "t2")
	assert.ErrorIs(t, err, ErrRoomAlreadyExists)

	code, err := m.GenerateCode()
	require.NoError(t, err)
	_, err = m.Create(code, "t1")
	assert.NoError(t, err)
	assert.Len(t, m.List(), 2)
}

func TestRoomModel_Delete(t *testing.T) {
	m, _ := newTestRoomModel()
	_, _, err := m.Join("abc-defg-hij", "t1", Participant{Identity: "lan"})
	require.NoError(t, err)

	ok, err := m.Delete("abc-defg-hij")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Delete("abc-defg-hij")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.Delete("bad")
	assert.ErrorIs(t, err, roomcode.ErrInvalidRoomCode)
}

func TestRoomModel_List(t *testing.T) {
	m, mc := newTestRoomModel()
	_, _, _ = m.GetOrCreate("ccc-cccc-ccc", "")
	mc.Add(time.Second)
	_, _, _ = m.GetOrCreate("aaa-aaaa-aaa", "")

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ccc-cccc-ccc", list[0].Code)
	assert.Equal(t, "aaa-aaaa-aaa", list[1].Code)
}

// Rooms past the TTL are swept over and over while participants join them
// and new rooms appear. A room that got a participant must never be lost.
func TestRoomModel_SweepDuringJoins(t *testing.T) {
	m, mc := newTestRoomModel()

	const n = 40
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("s%02d-swep-abc", i)
		_, _, err := m.GetOrCreate(codes[i], "")
		require.NoError(t, err)
	}
	mc.Add(2 * time.Hour)
	now := mc.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		appended = make(map[string]bool)
		fresh    []string
		stop     = make(chan struct{})
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.EvictSweep(now)
			}
		}
	}()

	var joins sync.WaitGroup
	for i, code := range codes {
		joins.Add(1)
		go func(i int, code string) {
			defer joins.Done()
			p := Participant{Identity: fmt.Sprintf("p%d", i)}
			switch i % 3 {
			case 0:
				_, _, err := m.Join(code, "", p)
				assert.NoError(t, err)
				mu.Lock()
				appended[code] = true
				mu.Unlock()
			case 1:
				added, err := m.AppendParticipant(code, p)
				if err != nil {
					assert.ErrorIs(t, err, ErrRoomNotFound)
					return
				}
				mu.Lock()
				appended[code] = added
				mu.Unlock()
			default:
				nc := fmt.Sprintf("n%02d-swep-abc", i)
				_, _, err := m.GetOrCreate(nc, "")
				assert.NoError(t, err)
				mu.Lock()
				fresh = append(fresh, nc)
				mu.Unlock()
			}
		}(i, code)
	}
	joins.Wait()
	close(stop)
	wg.Wait()

	// a last sweep after everything settled
	m.EvictSweep(now)

	for code, ok := range appended {
		if !ok {
			continue
		}
		e, found := m.Get(code)
		if assert.True(t, found, code) {
			assert.Len(t, e.Participants, 1, code)
		}
	}
	for _, code := range fresh {
		_, found := m.Get(code)
		assert.True(t, found, code)
	}
	for i, code := range codes {
		if i%3 != 2 {
			continue
		}
		_, found := m.Get(code)
		assert.False(t, found, code)
	}
}

func TestRoomModel_End(t *testing.T) {
	m, _ := newTestRoomModel()
	_, _, err := m.Join("abc-defg-hij", "u-host", Participant{Identity: "co-lan", UserId: "u-host"})
	require.NoError(t, err)
	_, _, err = m.Join("abc-defg-hij", "u-2", Participant{Identity: "nam", UserId: "u-2"})
	require.NoError(t, err)

	_, err = m.End("abc-defg-hij", "u-2")
	assert.ErrorIs(t, err, ErrNotRoomHost)
	_, err = m.End("abc-defg-hij", "")
	assert.ErrorIs(t, err, ErrNotRoomHost)
	_, ok := m.Get("abc-defg-hij")
	require.True(t, ok)

	e, err := m.End("ABC-DEFG-HIJ", "u-host")
	require.NoError(t, err)
	assert.Len(t, e.Participants, 2)
	_, ok = m.Get("abc-defg-hij")
	assert.False(t, ok)

	_, err = m.End("abc-defg-hij", "u-host")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = m.End("abc", "u-host")
	assert.ErrorIs(t, err, roomcode.ErrInvalidRoomCode)
}
