package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

// NoCandidatesMessage is the user-facing notice when the idle pool is empty.
const NoCandidatesMessage = "No available users found."

// RequestMatch pairs the requester with a random idle user. Unknown or
// non-idle requesters are a silent no-op; an empty pool yields a
// matchError notice to the requester only. Both sides go ProposalPending
// inside the registry's claim step, so no user can sit in two proposals.
func (o *Orchestrator) RequestMatch(requester domain.UserID) {
	peer, err := o.Registry.ClaimPair(requester, o.Selector.Pick)
	switch {
	case errors.Is(err, ErrNoCandidates):
		o.emitTo(requester, MatchError{Type: EvtMatchError, Message: NoCandidatesMessage})
		return
	case err != nil:
		log.Debug().Err(err).Str("module", "app.match").Str("user", string(requester)).Msg("match request ignored")
		return
	}

	reqSnap, _ := o.Registry.Lookup(requester)
	peerSnap, _ := o.Registry.Lookup(peer)
	o.emitTo(requester, proposedEvent(peerSnap.Profile))
	o.emitTo(peer, proposedEvent(reqSnap.Profile))
	o.Metrics.Proposals.Inc()
	log.Info().Str("module", "app.match").Str("user", string(requester)).Str("peer", string(peer)).Msg("proposal created")
}

// RespondToMatch resolves a pending proposal. Stale or mismatched
// responses (wrong peer, already resolved, responder unknown) are ignored.
func (o *Orchestrator) RespondToMatch(responder, peer domain.UserID, accepted bool) {
	if !accepted {
		if err := o.Registry.RejectProposal(responder, peer); err != nil {
			log.Debug().Err(err).Str("module", "app.match").Str("user", string(responder)).Msg("reject ignored")
			return
		}
		o.emitTo(responder, MatchRejected{Type: EvtMatchRejected})
		o.emitTo(peer, MatchRejected{Type: EvtMatchRejected})
		log.Info().Str("module", "app.match").Str("user", string(responder)).Str("peer", string(peer)).Msg("proposal rejected")
		return
	}

	roomID := domain.PairKey(responder, peer)
	if err := o.Registry.AcceptProposal(responder, peer, roomID); err != nil {
		log.Debug().Err(err).Str("module", "app.match").Str("user", string(responder)).Msg("accept ignored")
		return
	}

	room := o.Rooms.Create(responder, peer)
	success := MatchSuccess{Type: EvtMatchSuccess, RoomID: room.ID}
	timer := ChatTimerStarted{
		Type:     EvtChatTimerStarted,
		Duration: o.Rooms.TTL().Milliseconds(),
		EndTime:  room.Deadline.UnixMilli(),
	}
	for _, id := range room.Participants {
		o.emitTo(id, success)
		o.emitTo(id, timer)
	}
	o.Metrics.RoomsCreated.Inc()
	o.Metrics.RoomsActive.Set(float64(o.Rooms.Count()))
}

// expireRoom is the countdown callback. Idempotent: if disconnect cleanup
// already closed the room this is a no-op.
func (o *Orchestrator) expireRoom(id domain.RoomID) {
	room, ok := o.Rooms.Close(id)
	if !ok {
		return
	}
	o.Registry.ClearRoom(room.ID, room.Participants[0], room.Participants[1])
	ended := ChatEnded{Type: EvtChatEnded, Message: "Time is up. Request a new match whenever you are ready."}
	for _, pid := range room.Participants {
		o.emitTo(pid, ended)
		o.emitTo(pid, MatchEnded{Type: EvtMatchEnded})
	}
	o.Metrics.RoomsExpired.Inc()
	o.Metrics.RoomsActive.Set(float64(o.Rooms.Count()))
	log.Info().Str("module", "app.match").Str("room", string(id)).Msg("room expired")
}

func proposedEvent(p domain.Profile) MatchProposed {
	return MatchProposed{
		Type:           EvtMatchProposed,
		MatchID:        p.UserID,
		Name:           p.PublicName(),
		Photo:          p.PublicPhoto(),
		IsAnonymous:    p.Anonymous,
		AnonymityLevel: p.AnonymityLevel,
	}
}
