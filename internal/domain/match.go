package domain

// MatchPhase is a user's position in the matchmaking state machine.
type MatchPhase int

const (
	PhaseIdle MatchPhase = iota
	PhasePending
	PhaseInRoom
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseInRoom:
		return "in_room"
	}
	return "unknown"
}

// MatchState is the per-session matchmaking state. PeerID is set while a
// proposal is pending, RoomID while the user sits in a room.
type MatchState struct {
	Phase  MatchPhase
	PeerID UserID
	RoomID RoomID
}

// Idle reports whether the user can enter a new proposal.
func (s MatchState) Idle() bool { return s.Phase == PhaseIdle }
