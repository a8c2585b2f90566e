package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

// Inbound signaling kinds and the outbound events they become.
const (
	SigCallRequest  = "callUser"
	SigCallAnswer   = "answerCall"
	SigCallReject   = "rejectCall"
	SigCallEnd      = "endCall"
	SigOffer        = "offer"
	SigAnswer       = "answer"
	SigICECandidate = "iceCandidate"
)

var relayEvents = map[string]string{
	SigCallRequest:  "incomingCall",
	SigCallAnswer:   "callAnswered",
	SigCallReject:   "callRejected",
	SigCallEnd:      "callEnded",
	SigOffer:        "offer",
	SigAnswer:       "answer",
	SigICECandidate: "iceCandidate",
}

// OfflineReason is sent back to a caller whose target has no live session.
const OfflineReason = "User is offline"

// Relay forwards a call-negotiation message to the target user. Payloads
// are opaque. An unreachable target bounces only call initiations back to
// the sender as callRejected; every other kind is dropped silently.
func (o *Orchestrator) Relay(kind string, from, to domain.UserID, roomID domain.RoomID, payload json.RawMessage) {
	event, ok := relayEvents[kind]
	if !ok {
		log.Warn().Str("module", "app.relay").Str("kind", kind).Msg("unknown signal kind")
		return
	}

	target, ok := o.Registry.Conn(to)
	if !ok {
		if kind == SigCallRequest {
			o.emitTo(from, Signal{Type: relayEvents[SigCallReject], From: to, Reason: OfflineReason})
		}
		log.Debug().Str("module", "app.relay").Str("kind", kind).Str("to", string(to)).Msg("target unreachable")
		return
	}

	emit(target, Signal{Type: event, From: from, RoomID: roomID, Payload: payload})
	o.Metrics.SignalsRelayed.Inc()
}
