package queue

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"web3radio/internal/eth"
	"web3radio/internal/models"
)

var (
	ErrAlreadyQueued    = errors.New("already in queue")
	ErrNotQueued        = errors.New("not in queue")
	ErrStoreUnavailable = errors.New("queue store unavailable")
)

// Entry is one participant in a room's waiting list.
type Entry struct {
	Address     string    `json:"address"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarRef,omitempty"`
	BalanceHint string    `json:"balanceHint"`
	Position    int       `json:"position"`
	JoinedAt    time.Time `json:"joinedAt"`

	key      string // lower-cased identity, unique within a room
	lastSeen time.Time
}

// Evicted describes an entry removed by the TTL sweep.
type Evicted struct {
	RoomID string
	Entry  Entry
}

type room struct {
	// Serializes all mutations on this room. List snapshots under the same
	// lock so a reader never observes a partially renumbered list.
	mu      sync.Mutex
	members []*Entry
}

// Store owns the mapping from room id to its ordered member list. When a
// *gorm.DB is supplied, every mutation writes through: the member row and the
// station's denormalized listener_count change in one transaction before the
// in-memory state is touched, so a failed write leaves the room unchanged.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room

	db  *gorm.DB
	ttl time.Duration

	now func() time.Time
}

// NewStore creates a Store. db may be nil for a purely in-memory store
// (tests, or deployments without Postgres). ttl <= 0 disables expiry.
func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{
		rooms: make(map[string]*room),
		db:    db,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Store) getRoom(roomID string, create bool) *room {
	s.mu.RLock()
	r := s.rooms[roomID]
	s.mu.RUnlock()
	if r != nil || !create {
		return r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r = s.rooms[roomID]; r == nil {
		r = &room{}
		s.rooms[roomID] = r
	}
	return r
}

// Join appends identity to the room's waiting list at position N+1. The room
// is created implicitly on first join. Fails with ErrAlreadyQueued when the
// identity is already present (case-insensitive comparison).
func (s *Store) Join(roomID, identity, displayName, avatarRef, balanceHint string) (Entry, error) {
	if balanceHint == "" {
		balanceHint = "0"
	}
	key := strings.ToLower(strings.TrimSpace(identity))

	r := s.getRoom(roomID, true)
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.key == key {
			return Entry{}, ErrAlreadyQueued
		}
	}

	now := s.now()
	entry := &Entry{
		Address:     identity,
		DisplayName: displayName,
		AvatarURL:   avatarRef,
		BalanceHint: balanceHint,
		Position:    len(r.members) + 1,
		JoinedAt:    now,
		key:         key,
		lastSeen:    now,
	}

	if s.db != nil {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			row := models.QueueMember{
				RoomID:      roomID,
				Address:     key,
				BalanceHint: balanceHint,
				Position:    entry.Position,
				JoinedAt:    now,
				LastSeenAt:  now,
			}
			if displayName != "" {
				row.DisplayName = &displayName
			}
			if avatarRef != "" {
				row.AvatarURL = &avatarRef
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			return tx.Exec(
				"UPDATE stations SET listener_count = GREATEST(listener_count + 1, 0) WHERE slug = ?",
				roomID,
			).Error
		})
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	r.members = append(r.members, entry)
	return *entry, nil
}

// Leave removes identity from the room and renumbers the remaining entries to
// 1..N-1 in their existing relative order. A missing room is treated the same
// as a missing member: ErrNotQueued.
func (s *Store) Leave(roomID, identity string) error {
	key := strings.ToLower(strings.TrimSpace(identity))

	r := s.getRoom(roomID, false)
	if r == nil {
		return ErrNotQueued
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.members {
		if m.key == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotQueued
	}
	return s.removeLocked(roomID, r, idx)
}

// removeLocked deletes r.members[idx] and renumbers survivors. Caller holds
// r.mu. Persists first so a DB failure leaves memory untouched.
func (s *Store) removeLocked(roomID string, r *room, idx int) error {
	gone := r.members[idx]

	if s.db != nil {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().
				Where("room_id = ? AND address = ?", roomID, gone.key).
				Delete(&models.QueueMember{}).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE queue_members SET position = position - 1 WHERE room_id = ? AND position > ? AND deleted_at IS NULL",
				roomID, gone.Position,
			).Error; err != nil {
				return err
			}
			return tx.Exec(
				"UPDATE stations SET listener_count = GREATEST(listener_count - 1, 0) WHERE slug = ?",
				roomID,
			).Error
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	for i, m := range r.members {
		m.Position = i + 1
	}
	return nil
}

// Touch refreshes the identity's last-seen time so the TTL sweep keeps it.
func (s *Store) Touch(roomID, identity string) error {
	key := strings.ToLower(strings.TrimSpace(identity))

	r := s.getRoom(roomID, false)
	if r == nil {
		return ErrNotQueued
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.key == key {
			now := s.now()
			if s.db != nil {
				err := s.db.Model(&models.QueueMember{}).
					Where("room_id = ? AND address = ?", roomID, key).
					Update("last_seen_at", now).Error
				if err != nil {
					return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
				}
			}
			m.lastSeen = now
			return nil
		}
	}
	return ErrNotQueued
}

// List returns a snapshot of the room's members in queue order. An unknown
// room is an empty room, not an error.
func (s *Store) List(roomID string) []Entry {
	r := s.getRoom(roomID, false)
	if r == nil {
		return []Entry{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.members))
	for i, m := range r.members {
		out[i] = *m
	}
	return out
}

// Count returns the current member count of a room.
func (s *Store) Count(roomID string) int {
	r := s.getRoom(roomID, false)
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// SweepExpired removes every entry idle longer than the TTL, through the same
// path as Leave. Entries whose persistence fails are kept and retried on the
// next sweep. Returns the evicted entries for event broadcasting.
func (s *Store) SweepExpired() []Evicted {
	if s.ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	var evicted []Evicted
	for _, id := range ids {
		r := s.getRoom(id, false)
		if r == nil {
			continue
		}
		r.mu.Lock()
		for i := 0; i < len(r.members); {
			m := r.members[i]
			if !m.lastSeen.Before(cutoff) {
				i++
				continue
			}
			gone := *m
			if err := s.removeLocked(id, r, i); err != nil {
				i++
				continue
			}
			evicted = append(evicted, Evicted{RoomID: id, Entry: gone})
		}
		r.mu.Unlock()
	}
	return evicted
}

// Load rebuilds the in-memory state from the member table, ordered by stored
// position. Called once at startup, before the HTTP server accepts traffic.
func (s *Store) Load() error {
	if s.db == nil {
		return nil
	}
	var rows []models.QueueMember
	if err := s.db.Order("room_id ASC, position ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = make(map[string]*room)
	for _, row := range rows {
		r := s.rooms[row.RoomID]
		if r == nil {
			r = &room{}
			s.rooms[row.RoomID] = r
		}
		display := row.Address
		if cs, err := eth.Checksum(row.Address); err == nil {
			display = cs
		}
		e := &Entry{
			Address:     display,
			BalanceHint: row.BalanceHint,
			Position:    len(r.members) + 1, // renumber defensively on reload
			JoinedAt:    row.JoinedAt,
			key:         strings.ToLower(row.Address),
			lastSeen:    row.LastSeenAt,
		}
		if row.DisplayName != nil {
			e.DisplayName = *row.DisplayName
		}
		if row.AvatarURL != nil {
			e.AvatarURL = *row.AvatarURL
		}
		r.members = append(r.members, e)
	}
	return nil
}
