package app

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/veloji/blink/internal/domain"
)

func TestRoomsCreateCanonicalID(t *testing.T) {
	rs := NewRooms(time.Minute)
	room := rs.Create("bob", "alice")
	if room.ID != domain.PairKey("alice", "bob") {
		t.Fatalf("room id %q, want canonical %q", room.ID, domain.PairKey("alice", "bob"))
	}
	if got, ok := rs.Get(room.ID); !ok || got.ID != room.ID {
		t.Fatal("created room not retrievable")
	}
	rs.Close(room.ID)
}

func TestRoomsExpireFiresOnce(t *testing.T) {
	rs := NewRooms(30 * time.Millisecond)
	var fired atomic.Int32
	rs.OnExpire(func(id domain.RoomID) {
		// Mirror the orchestrator: expiry closes the room itself.
		if _, ok := rs.Close(id); ok {
			fired.Add(1)
		}
	})

	rs.Create("a", "b")
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Fatalf("expiry fired %d times, want 1", got)
	}
	if rs.Count() != 0 {
		t.Fatalf("room table size %d after expiry, want 0", rs.Count())
	}
}

func TestRoomsCloseCancelsTimer(t *testing.T) {
	rs := NewRooms(30 * time.Millisecond)
	var fired atomic.Int32
	rs.OnExpire(func(id domain.RoomID) {
		if _, ok := rs.Close(id); ok {
			fired.Add(1)
		}
	})

	room := rs.Create("a", "b")
	if _, ok := rs.Close(room.ID); !ok {
		t.Fatal("close of a live room reported false")
	}
	// Closing again is a no-op, never an error.
	if _, ok := rs.Close(room.ID); ok {
		t.Fatal("second close reported true")
	}

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("cancelled timer fired %d times", got)
	}
}
