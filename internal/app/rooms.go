package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

type activeRoom struct {
	room  *domain.Room
	timer *time.Timer
}

// Rooms owns the table of live rooms and their countdown timers. Every
// destruction path runs through Close, which stops the timer, so a room
// can never fire its expiry after it is gone.
type Rooms struct {
	mu       sync.Mutex
	ttl      time.Duration
	rooms    map[domain.RoomID]*activeRoom
	onExpire func(domain.RoomID)
}

func NewRooms(ttl time.Duration) *Rooms {
	return &Rooms{ttl: ttl, rooms: make(map[domain.RoomID]*activeRoom)}
}

// OnExpire installs the callback invoked when a room's countdown fires.
// Must be set before the first Create.
func (rs *Rooms) OnExpire(fn func(domain.RoomID)) { rs.onExpire = fn }

// TTL returns the fixed conversation duration.
func (rs *Rooms) TTL() time.Duration { return rs.ttl }

// Create builds the room for a participant pair and starts its countdown.
// The id is the canonical pair key, identical no matter which side's
// handler got here first. An existing room under the same key is replaced
// and its timer stopped.
func (rs *Rooms) Create(a, b domain.UserID) *domain.Room {
	id := domain.PairKey(a, b)
	now := time.Now()
	room := &domain.Room{
		ID:           id,
		Participants: [2]domain.UserID{a, b},
		StartedAt:    now,
		Deadline:     now.Add(rs.ttl),
	}

	rs.mu.Lock()
	if old, ok := rs.rooms[id]; ok {
		old.timer.Stop()
	}
	rs.rooms[id] = &activeRoom{
		room: room,
		timer: time.AfterFunc(rs.ttl, func() {
			if rs.onExpire != nil {
				rs.onExpire(id)
			}
		}),
	}
	rs.mu.Unlock()

	log.Info().Str("module", "app.rooms").Str("room", string(id)).Dur("ttl", rs.ttl).Msg("room created")
	return room
}

// Close stops the countdown and removes the room. Idempotent: closing a
// room that is already gone reports false and does nothing else.
func (rs *Rooms) Close(id domain.RoomID) (*domain.Room, bool) {
	rs.mu.Lock()
	entry, ok := rs.rooms[id]
	if ok {
		entry.timer.Stop()
		delete(rs.rooms, id)
	}
	rs.mu.Unlock()
	if !ok {
		return nil, false
	}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room closed")
	return entry.room, true
}

// Get returns the live room, if any.
func (rs *Rooms) Get(id domain.RoomID) (*domain.Room, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	entry, ok := rs.rooms[id]
	if !ok {
		return nil, false
	}
	return entry.room, true
}

// Count returns the number of live rooms.
func (rs *Rooms) Count() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rooms)
}
