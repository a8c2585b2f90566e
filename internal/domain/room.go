package domain

import "time"

type RoomID string

// PairKey derives the room identifier for a participant pair. The pair is
// unordered: both sides must compute the same key no matter who asks.
func PairKey(a, b UserID) RoomID {
	if b < a {
		a, b = b, a
	}
	return RoomID(string(a) + "_" + string(b))
}

// Room is one active timed conversation between exactly two users.
type Room struct {
	ID           RoomID
	Participants [2]UserID
	StartedAt    time.Time
	Deadline     time.Time
}

// Peer returns the other participant, or false if id is not a member.
func (r *Room) Peer(id UserID) (UserID, bool) {
	switch id {
	case r.Participants[0]:
		return r.Participants[1], true
	case r.Participants[1]:
		return r.Participants[0], true
	}
	return "", false
}

// Has reports whether id is a participant of the room.
func (r *Room) Has(id UserID) bool {
	_, ok := r.Peer(id)
	return ok
}
