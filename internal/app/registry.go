package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrNotIdle       = errors.New("user not idle")
	ErrNoCandidates  = errors.New("no idle candidates")
	ErrStaleResponse = errors.New("stale match response")
)

type session struct {
	Profile domain.Profile
	ConnID  string
	State   domain.MatchState
	Conn    Conn
}

// Snapshot is a read-only copy of a session, safe to use outside the
// registry lock.
type Snapshot struct {
	Profile domain.Profile
	ConnID  string
	State   domain.MatchState
}

// Registry is the single source of truth for who is reachable and what
// their match state is. All state transitions that have to be atomic
// (candidate selection + pending marking, proposal resolution) live here
// so they run under one lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.UserID]*session)}
}

// Register inserts or replaces the session for a user. The previous
// session, if any, is returned so the caller can tear down whatever it
// was engaged in; last connection wins.
func (r *Registry) Register(p domain.Profile, connID string, conn Conn) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, had := r.sessions[p.UserID]
	r.sessions[p.UserID] = &session{Profile: p, ConnID: connID, Conn: conn}
	log.Info().Str("module", "app.registry").Str("user", string(p.UserID)).Str("conn", connID).Bool("replaced", had).Msg("registered")
	if !had {
		return Snapshot{}, false
	}
	return snapshotOf(prev), true
}

// Remove deletes the session, but only if it still belongs to the given
// connection. A read loop of a superseded connection must not remove the
// session its replacement just registered.
func (r *Registry) Remove(id domain.UserID, connID string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.ConnID != connID {
		return Snapshot{}, false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("user", string(id)).Msg("removed")
	return snapshotOf(s), true
}

// Lookup returns a copy of the session state.
func (r *Registry) Lookup(id domain.UserID) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(s), true
}

// Conn returns the live connection of a user, if any.
func (r *Registry) Conn(id domain.UserID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.Conn, true
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ClaimPair atomically picks a candidate for the requester and marks both
// sides ProposalPending. Holding the lock across selection and marking is
// what closes the double-booking window: a concurrent request can never
// pick a user this call already claimed.
func (r *Registry) ClaimPair(requester domain.UserID, pick func([]domain.UserID) domain.UserID) (domain.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.sessions[requester]
	if !ok {
		return "", ErrUnknownUser
	}
	if !req.State.Idle() {
		return "", ErrNotIdle
	}

	candidates := make([]domain.UserID, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id != requester && s.State.Idle() {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	peer := pick(candidates)
	req.State = domain.MatchState{Phase: domain.PhasePending, PeerID: peer}
	r.sessions[peer].State = domain.MatchState{Phase: domain.PhasePending, PeerID: requester}
	log.Info().Str("module", "app.registry").Str("user", string(requester)).Str("peer", string(peer)).Msg("pair claimed")
	return peer, nil
}

// AcceptProposal moves both sides of a pending proposal into the room.
// Stale or mismatched responses leave the registry untouched.
func (r *Registry) AcceptProposal(responder, peer domain.UserID, roomID domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkPending(responder, peer); err != nil {
		return err
	}
	inRoom := domain.MatchState{Phase: domain.PhaseInRoom, RoomID: roomID}
	r.sessions[responder].State = inRoom
	r.sessions[peer].State = inRoom
	return nil
}

// RejectProposal returns both sides of a pending proposal to idle.
func (r *Registry) RejectProposal(responder, peer domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkPending(responder, peer); err != nil {
		return err
	}
	r.sessions[responder].State = domain.MatchState{}
	r.sessions[peer].State = domain.MatchState{}
	return nil
}

// checkPending validates that responder and peer hold a proposal with each
// other. Must be called with mu held.
func (r *Registry) checkPending(responder, peer domain.UserID) error {
	res, ok := r.sessions[responder]
	if !ok {
		return ErrUnknownUser
	}
	if res.State.Phase != domain.PhasePending || res.State.PeerID != peer {
		return ErrStaleResponse
	}
	p, ok := r.sessions[peer]
	if !ok || p.State.Phase != domain.PhasePending || p.State.PeerID != responder {
		return ErrStaleResponse
	}
	return nil
}

// DropProposal resets peer to idle if it is still pending against gone.
// Used when one side of a proposal vanishes.
func (r *Registry) DropProposal(gone, peer domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[peer]
	if !ok || s.State.Phase != domain.PhasePending || s.State.PeerID != gone {
		return false
	}
	s.State = domain.MatchState{}
	return true
}

// ClearRoom resets the given users to idle, but only those still attached
// to roomID. A stale timer racing a rebuilt session is a no-op here.
func (r *Registry) ClearRoom(roomID domain.RoomID, ids ...domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		s, ok := r.sessions[id]
		if !ok {
			continue
		}
		if s.State.Phase == domain.PhaseInRoom && s.State.RoomID == roomID {
			s.State = domain.MatchState{}
		}
	}
}

// InRoom reports whether the user currently sits in the given room.
func (r *Registry) InRoom(id domain.UserID, roomID domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return ok && s.State.Phase == domain.PhaseInRoom && s.State.RoomID == roomID
}

func snapshotOf(s *session) Snapshot {
	return Snapshot{Profile: s.Profile, ConnID: s.ConnID, State: s.State}
}
