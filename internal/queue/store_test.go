package queue

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoom = "hotbox-1"

func testAddr(i int) string {
	return fmt.Sprintf("0x%040x", i+1)
}

// checkInvariants asserts positions are exactly 1..N in list order.
func checkInvariants(t *testing.T, s *Store, roomID string) {
	t.Helper()
	members := s.List(roomID)
	seen := make(map[string]bool)
	for i, m := range members {
		assert.Equal(t, i+1, m.Position, "position must match list order")
		assert.False(t, seen[m.key], "duplicate identity %s", m.Address)
		seen[m.key] = true
	}
}

func TestJoinLeaveFlow(t *testing.T) {
	s := NewStore(nil, 0)

	a := "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	b := "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"

	entryA, err := s.Join(testRoom, a, "alice", "", "42")
	require.NoError(t, err)
	assert.Equal(t, 1, entryA.Position)
	assert.Equal(t, 1, s.Count(testRoom))

	entryB, err := s.Join(testRoom, b, "bob", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, entryB.Position)
	assert.Equal(t, 2, s.Count(testRoom))
	assert.Equal(t, "0", entryB.BalanceHint, "empty hint defaults to zero")

	require.NoError(t, s.Leave(testRoom, a))
	members := s.List(testRoom)
	require.Len(t, members, 1)
	assert.Equal(t, b, members[0].Address)
	assert.Equal(t, 1, members[0].Position, "survivor renumbered to 1")

	require.NoError(t, s.Leave(testRoom, b))
	assert.Equal(t, 0, s.Count(testRoom))

	assert.ErrorIs(t, s.Leave(testRoom, b), ErrNotQueued)
}

func TestDuplicateJoin(t *testing.T) {
	s := NewStore(nil, 0)
	a := testAddr(0)

	_, err := s.Join(testRoom, a, "", "", "")
	require.NoError(t, err)

	_, err = s.Join(testRoom, a, "", "", "")
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	members := s.List(testRoom)
	require.Len(t, members, 1, "failed join must not change the room")
	assert.Equal(t, 1, members[0].Position)
}

func TestLeaveAbsent(t *testing.T) {
	s := NewStore(nil, 0)

	assert.ErrorIs(t, s.Leave("no-such-room", testAddr(0)), ErrNotQueued)

	_, err := s.Join(testRoom, testAddr(0), "", "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Leave(testRoom, testAddr(1)), ErrNotQueued)
	assert.Equal(t, 1, s.Count(testRoom), "failed leave must not change the room")
}

func TestCaseInsensitiveIdentity(t *testing.T) {
	s := NewStore(nil, 0)

	_, err := s.Join(testRoom, "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01", "", "", "")
	require.NoError(t, err)

	_, err = s.Join(testRoom, "0xabcdef0123456789abcdef0123456789abcdef01", "", "", "")
	assert.ErrorIs(t, err, ErrAlreadyQueued, "same address in different casing is the same identity")

	require.NoError(t, s.Leave(testRoom, "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"))
	assert.Equal(t, 0, s.Count(testRoom))
}

func TestUnknownRoomListIsEmpty(t *testing.T) {
	s := NewStore(nil, 0)
	members := s.List("never-seen")
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestPositionsContiguousUnderRandomOps(t *testing.T) {
	s := NewStore(nil, 0)
	rng := rand.New(rand.NewSource(1))

	present := make(map[string]bool)
	for op := 0; op < 500; op++ {
		addr := testAddr(rng.Intn(30))
		if rng.Intn(2) == 0 {
			_, err := s.Join(testRoom, addr, "", "", "")
			if present[addr] {
				assert.ErrorIs(t, err, ErrAlreadyQueued)
			} else {
				require.NoError(t, err)
				present[addr] = true
			}
		} else {
			err := s.Leave(testRoom, addr)
			if present[addr] {
				require.NoError(t, err)
				delete(present, addr)
			} else {
				assert.ErrorIs(t, err, ErrNotQueued)
			}
		}
		checkInvariants(t, s, testRoom)
		assert.Equal(t, len(present), s.Count(testRoom))
	}
}

func TestConcurrentJoinLeave(t *testing.T) {
	s := NewStore(nil, 0)

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := testAddr(i)
			for j := 0; j < 50; j++ {
				if _, err := s.Join(testRoom, addr, "", "", ""); err != nil {
					continue
				}
				if i%2 == 0 {
					_ = s.Leave(testRoom, addr)
				}
			}
		}(i)
	}
	wg.Wait()

	members := s.List(testRoom)
	assert.GreaterOrEqual(t, len(members), 0)
	positions := make(map[int]bool)
	for i, m := range members {
		assert.Equal(t, i+1, m.Position)
		assert.False(t, positions[m.Position], "no two entries share a position")
		positions[m.Position] = true
	}
}

func TestListIsSnapshot(t *testing.T) {
	s := NewStore(nil, 0)
	_, err := s.Join(testRoom, testAddr(0), "", "", "")
	require.NoError(t, err)

	snapshot := s.List(testRoom)
	require.NoError(t, s.Leave(testRoom, testAddr(0)))

	require.Len(t, snapshot, 1, "snapshot must not observe later mutations")
	assert.Equal(t, 1, snapshot[0].Position)
}

func TestSweepExpired(t *testing.T) {
	s := NewStore(nil, 10*time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	_, err := s.Join(testRoom, testAddr(0), "", "", "")
	require.NoError(t, err)

	clock = clock.Add(5 * time.Minute)
	_, err = s.Join(testRoom, testAddr(1), "", "", "")
	require.NoError(t, err)

	// First entry is now 11 minutes idle, second only 6.
	clock = clock.Add(6 * time.Minute)
	evicted := s.SweepExpired()
	require.Len(t, evicted, 1)
	assert.Equal(t, testRoom, evicted[0].RoomID)
	assert.Equal(t, 1, evicted[0].Entry.Position)

	members := s.List(testRoom)
	require.Len(t, members, 1)
	assert.Equal(t, 1, members[0].Position, "survivor renumbered after eviction")
}

func TestTouchDelaysEviction(t *testing.T) {
	s := NewStore(nil, 10*time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	_, err := s.Join(testRoom, testAddr(0), "", "", "")
	require.NoError(t, err)

	clock = clock.Add(9 * time.Minute)
	require.NoError(t, s.Touch(testRoom, testAddr(0)))

	clock = clock.Add(9 * time.Minute)
	assert.Empty(t, s.SweepExpired(), "heartbeat resets the idle window")

	clock = clock.Add(2 * time.Minute)
	assert.Len(t, s.SweepExpired(), 1)

	assert.ErrorIs(t, s.Touch(testRoom, testAddr(0)), ErrNotQueued)
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	s := NewStore(nil, 0)
	_, err := s.Join(testRoom, testAddr(0), "", "", "")
	require.NoError(t, err)
	assert.Nil(t, s.SweepExpired())
	assert.Equal(t, 1, s.Count(testRoom))
}
