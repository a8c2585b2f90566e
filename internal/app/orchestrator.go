package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
	"github.com/veloji/blink/internal/observe"
)

// Archive receives the fire-and-forget writes (reports, chat ratings).
// Outcomes never gate the real-time flow.
type Archive interface {
	AddReport(ctx context.Context, reportedBy, reported domain.UserID, reason string) error
	AddRating(ctx context.Context, ratedBy, rated domain.UserID, tag string) error
}

const archiveTimeout = 5 * time.Second

// Orchestrator wires registry, matchmaking, room lifecycle and relay
// together. One instance owns all in-memory state; handlers get it by
// reference, there are no package globals.
type Orchestrator struct {
	Registry *Registry
	Rooms    *Rooms
	Selector Selector
	Archive  Archive // optional
	Metrics  *observe.Metrics
}

func NewOrchestrator(rooms *Rooms, selector Selector, archive Archive, metrics *observe.Metrics) *Orchestrator {
	o := &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    rooms,
		Selector: selector,
		Archive:  archive,
		Metrics:  metrics,
	}
	rooms.OnExpire(o.expireRoom)
	return o
}

// Register binds a user to a connection, superseding any previous session.
// Re-registering while mid-proposal or mid-room counts as an implicit
// disconnect of the old session: the peer is released first.
func (o *Orchestrator) Register(p domain.Profile, connID string, conn Conn) {
	prev, replaced := o.Registry.Register(p, connID, conn)
	if replaced {
		o.releasePeer(p.UserID, prev.State)
	}
	o.Metrics.UsersOnline.Set(float64(o.Registry.Count()))
}

// OnDisconnect tears down whatever the user was engaged in. connID guards
// against a superseded connection's read loop cleaning up the session its
// replacement registered.
func (o *Orchestrator) OnDisconnect(id domain.UserID, connID string) {
	snap, ok := o.Registry.Remove(id, connID)
	if !ok {
		return
	}
	o.releasePeer(id, snap.State)
	o.Metrics.UsersOnline.Set(float64(o.Registry.Count()))
}

// releasePeer undoes the proposal or room the departing user leaves behind
// and notifies the peer. Absence of the peer is not an error, only a
// skipped notification.
func (o *Orchestrator) releasePeer(gone domain.UserID, state domain.MatchState) {
	switch state.Phase {
	case domain.PhasePending:
		if o.Registry.DropProposal(gone, state.PeerID) {
			o.emitTo(state.PeerID, MatchRejected{Type: EvtMatchRejected})
			log.Info().Str("module", "app").Str("user", string(gone)).Str("peer", string(state.PeerID)).Msg("proposal dropped on departure")
		}
	case domain.PhaseInRoom:
		room, ok := o.Rooms.Close(state.RoomID)
		if !ok {
			return
		}
		peer, _ := room.Peer(gone)
		o.Registry.ClearRoom(room.ID, peer)
		o.emitTo(peer, MatchEnded{Type: EvtMatchEnded})
		o.Metrics.RoomsActive.Set(float64(o.Rooms.Count()))
		log.Info().Str("module", "app").Str("room", string(room.ID)).Str("user", string(gone)).Msg("room closed on departure")
	}
}

// Report archives a user report in the background.
func (o *Orchestrator) Report(reportedBy, reported domain.UserID, reason string) {
	if o.Archive == nil {
		return
	}
	if _, ok := o.Registry.Lookup(reportedBy); !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := o.Archive.AddReport(ctx, reportedBy, reported, reason); err != nil {
			log.Error().Err(err).Str("module", "app").Str("reported", string(reported)).Msg("report write failed")
		}
	}()
}

// Rate archives a chat rating in the background.
func (o *Orchestrator) Rate(ratedBy, rated domain.UserID, tag string) {
	if o.Archive == nil {
		return
	}
	if _, ok := o.Registry.Lookup(ratedBy); !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := o.Archive.AddRating(ctx, ratedBy, rated, tag); err != nil {
			log.Error().Err(err).Str("module", "app").Str("rated", string(rated)).Msg("rating write failed")
		}
	}()
}
