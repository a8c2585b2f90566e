package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

// Outbound event types. Inbound types live in the signal adapter; these
// are the ones the core emits on its own (timers, teardown) plus the
// mirrors of client requests.
const (
	EvtMatchProposed    = "matchProposed"
	EvtMatchSuccess     = "matchSuccess"
	EvtMatchRejected    = "matchRejected"
	EvtMatchError       = "matchError"
	EvtMatchEnded       = "matchEnded"
	EvtChatTimerStarted = "chatTimerStarted"
	EvtChatEnded        = "chatEnded"
	EvtMessage          = "message"
)

type MatchProposed struct {
	Type           string                `json:"type"`
	MatchID        domain.UserID         `json:"matchId"`
	Name           string                `json:"name,omitempty"`
	Photo          string                `json:"photo,omitempty"`
	IsAnonymous    bool                  `json:"isAnonymous"`
	AnonymityLevel domain.AnonymityLevel `json:"anonymityLevel"`
}

type MatchSuccess struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type MatchRejected struct {
	Type string `json:"type"`
}

type MatchError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type MatchEnded struct {
	Type string `json:"type"`
}

type ChatTimerStarted struct {
	Type string `json:"type"`
	// Duration in milliseconds, EndTime as unix milliseconds.
	Duration int64 `json:"duration"`
	EndTime  int64 `json:"endTime"`
}

type ChatEnded struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatMessage is a fanned-out room message, stamped with the sender's
// public profile fields.
type ChatMessage struct {
	Type           string                `json:"type"`
	RoomID         domain.RoomID         `json:"roomId"`
	Body           json.RawMessage       `json:"message"`
	UserID         domain.UserID         `json:"userId"`
	UserName       string                `json:"userName,omitempty"`
	UserPhoto      string                `json:"userPhoto,omitempty"`
	IsAnonymous    bool                  `json:"isAnonymous"`
	AnonymityLevel domain.AnonymityLevel `json:"anonymityLevel"`
}

// Signal is a relayed call-negotiation message. The payload stays opaque;
// this layer only routes it.
type Signal struct {
	Type    string          `json:"type"`
	From    domain.UserID   `json:"from"`
	RoomID  domain.RoomID   `json:"roomId,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// emit serializes v and queues it on the connection. Delivery is
// fire-and-forget: backpressure and closed connections only get a log line.
func emit(c Conn, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit marshal")
		return
	}
	if err := c.TrySend(Frame(b)); err != nil {
		log.Debug().Err(err).Str("module", "app").Msg("emit dropped")
	}
}

// emitTo looks the user up in the registry and emits if reachable.
func (o *Orchestrator) emitTo(id domain.UserID, v any) {
	if c, ok := o.Registry.Conn(id); ok {
		emit(c, v)
	}
}
