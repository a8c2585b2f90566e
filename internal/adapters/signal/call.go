package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

// handleCallSignal parses the common relay envelope and hands it to the
// orchestrator. The sender identity is the registered user of this
// connection, never a field the client controls.
func (ctl *SignalWSController) handleCallSignal(c *WsSignalConn, kind string, data []byte) {
	if c.userID == "" {
		return
	}
	type callPayload struct {
		Type    string          `json:"type"`
		To      domain.UserID   `json:"to"`
		RoomID  domain.RoomID   `json:"roomId"`
		Payload json.RawMessage `json:"payload"`
	}
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad call payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.To == "" {
		ctl.sendError(c, "to required")
		return
	}
	ctl.Orch.Relay(kind, c.userID, p.To, p.RoomID, p.Payload)
}
