package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

// SendMessage broadcasts a chat message to every member of the room,
// sender included, stamped with the sender's public profile fields.
// Senders outside the room are a silent no-op (isolation).
func (o *Orchestrator) SendMessage(from domain.UserID, roomID domain.RoomID, body json.RawMessage) {
	if !o.Registry.InRoom(from, roomID) {
		log.Debug().Str("module", "app.fanout").Str("user", string(from)).Str("room", string(roomID)).Msg("message outside room ignored")
		return
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	snap, ok := o.Registry.Lookup(from)
	if !ok {
		return
	}

	msg := ChatMessage{
		Type:           EvtMessage,
		RoomID:         roomID,
		Body:           body,
		UserID:         from,
		UserName:       snap.Profile.PublicName(),
		UserPhoto:      snap.Profile.PublicPhoto(),
		IsAnonymous:    snap.Profile.Anonymous,
		AnonymityLevel: snap.Profile.AnonymityLevel,
	}
	for _, id := range room.Participants {
		o.emitTo(id, msg)
	}
	o.Metrics.Messages.Inc()
}
