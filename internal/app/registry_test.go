package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/veloji/blink/internal/domain"
)

func profile(t *testing.T, id domain.UserID) domain.Profile {
	t.Helper()
	p, err := domain.NewProfile(id, "n", "", false, domain.AnonymityOpen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRegistryLastConnectionWins(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &captureConn{}, &captureConn{}

	r.Register(profile(t, "u1"), "conn-1", c1)
	prev, replaced := r.Register(profile(t, "u1"), "conn-2", c2)
	if !replaced || prev.ConnID != "conn-1" {
		t.Fatalf("expected replacement of conn-1, got replaced=%v prev=%q", replaced, prev.ConnID)
	}
	if r.Count() != 1 {
		t.Fatalf("registry size %d, want 1 for a single userId", r.Count())
	}

	conn, ok := r.Conn("u1")
	if !ok || conn != Conn(c2) {
		t.Fatal("lookup should resolve to the newest connection")
	}
}

func TestRegistryRemoveGuardsConnID(t *testing.T) {
	r := NewRegistry()
	r.Register(profile(t, "u1"), "conn-1", &captureConn{})
	r.Register(profile(t, "u1"), "conn-2", &captureConn{})

	// The superseded connection's cleanup must not evict the new session.
	if _, ok := r.Remove("u1", "conn-1"); ok {
		t.Fatal("stale connID removed a live session")
	}
	if _, ok := r.Lookup("u1"); !ok {
		t.Fatal("session vanished")
	}
	if _, ok := r.Remove("u1", "conn-2"); !ok {
		t.Fatal("matching connID should remove the session")
	}
	if r.Count() != 0 {
		t.Fatalf("registry size %d after remove, want 0", r.Count())
	}
}

func pickFirst(c []domain.UserID) domain.UserID { return c[0] }

func TestClaimPair(t *testing.T) {
	r := NewRegistry()
	r.Register(profile(t, "a"), "ca", &captureConn{})

	if _, err := r.ClaimPair("ghost", pickFirst); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("unknown requester: got %v, want ErrUnknownUser", err)
	}
	if _, err := r.ClaimPair("a", pickFirst); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("empty pool: got %v, want ErrNoCandidates", err)
	}

	r.Register(profile(t, "b"), "cb", &captureConn{})
	peer, err := r.ClaimPair("a", pickFirst)
	if err != nil || peer != "b" {
		t.Fatalf("ClaimPair = %q, %v; want b, nil", peer, err)
	}

	// Both sides are pending now; neither can enter another proposal.
	if _, err := r.ClaimPair("a", pickFirst); !errors.Is(err, ErrNotIdle) {
		t.Errorf("pending requester: got %v, want ErrNotIdle", err)
	}
	r.Register(profile(t, "c"), "cc", &captureConn{})
	if _, err := r.ClaimPair("c", pickFirst); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("pool of pending users: got %v, want ErrNoCandidates", err)
	}
}

func TestClaimPairNoDoubleBooking(t *testing.T) {
	r := NewRegistry()
	for _, id := range []domain.UserID{"a", "b", "c"} {
		r.Register(profile(t, id), string(id), &captureConn{})
	}

	var wg sync.WaitGroup
	for _, id := range []domain.UserID{"a", "b", "c"} {
		wg.Add(1)
		go func(id domain.UserID) {
			defer wg.Done()
			r.ClaimPair(id, pickFirst)
		}(id)
	}
	wg.Wait()

	// Every pending user's peer must point straight back.
	for _, id := range []domain.UserID{"a", "b", "c"} {
		snap, _ := r.Lookup(id)
		if snap.State.Phase != domain.PhasePending {
			continue
		}
		peerSnap, ok := r.Lookup(snap.State.PeerID)
		if !ok {
			t.Fatalf("%s pending against unknown peer %s", id, snap.State.PeerID)
		}
		if peerSnap.State.Phase != domain.PhasePending || peerSnap.State.PeerID != id {
			t.Fatalf("%s pending against %s, but %s is %v with peer %q",
				id, snap.State.PeerID, snap.State.PeerID, peerSnap.State.Phase, peerSnap.State.PeerID)
		}
	}
}

func TestProposalResolution(t *testing.T) {
	r := NewRegistry()
	r.Register(profile(t, "a"), "ca", &captureConn{})
	r.Register(profile(t, "b"), "cb", &captureConn{})
	if _, err := r.ClaimPair("a", pickFirst); err != nil {
		t.Fatal(err)
	}

	// Mismatched peer is stale.
	if err := r.AcceptProposal("a", "someone-else", "x"); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("mismatched accept: got %v, want ErrStaleResponse", err)
	}

	roomID := domain.PairKey("a", "b")
	if err := r.AcceptProposal("b", "a", roomID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	for _, id := range []domain.UserID{"a", "b"} {
		snap, _ := r.Lookup(id)
		if snap.State.Phase != domain.PhaseInRoom || snap.State.RoomID != roomID {
			t.Fatalf("%s state = %+v, want in room %s", id, snap.State, roomID)
		}
	}

	// Responding again is stale.
	if err := r.AcceptProposal("a", "b", roomID); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("double accept: got %v, want ErrStaleResponse", err)
	}
}

func TestRejectProposal(t *testing.T) {
	r := NewRegistry()
	r.Register(profile(t, "a"), "ca", &captureConn{})
	r.Register(profile(t, "b"), "cb", &captureConn{})
	if _, err := r.ClaimPair("a", pickFirst); err != nil {
		t.Fatal(err)
	}

	if err := r.RejectProposal("b", "a"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	for _, id := range []domain.UserID{"a", "b"} {
		snap, _ := r.Lookup(id)
		if !snap.State.Idle() {
			t.Fatalf("%s not idle after reject: %+v", id, snap.State)
		}
	}
}

func TestClearRoomOnlyMatchingRoom(t *testing.T) {
	r := NewRegistry()
	r.Register(profile(t, "a"), "ca", &captureConn{})
	r.Register(profile(t, "b"), "cb", &captureConn{})
	if _, err := r.ClaimPair("a", pickFirst); err != nil {
		t.Fatal(err)
	}
	roomID := domain.PairKey("a", "b")
	if err := r.AcceptProposal("a", "b", roomID); err != nil {
		t.Fatal(err)
	}

	// A stale timer for some other room must not reset the state.
	r.ClearRoom("other_room", "a", "b")
	snap, _ := r.Lookup("a")
	if snap.State.Phase != domain.PhaseInRoom {
		t.Fatal("wrong-room clear reset the session")
	}

	r.ClearRoom(roomID, "a", "b")
	for _, id := range []domain.UserID{"a", "b"} {
		snap, _ := r.Lookup(id)
		if !snap.State.Idle() {
			t.Fatalf("%s not idle after room clear", id)
		}
	}
}
