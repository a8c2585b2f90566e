package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

func (ctl *SignalWSController) handleMessage(c *WsSignalConn, data []byte) {
	if c.userID == "" {
		return
	}
	type messagePayload struct {
		Type    string          `json:"type"`
		RoomID  domain.RoomID   `json:"roomId"`
		Message json.RawMessage `json:"message"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.RoomID == "" || len(p.Message) == 0 {
		ctl.sendError(c, "roomId and message required")
		return
	}
	ctl.Orch.SendMessage(c.userID, p.RoomID, p.Message)
}

func (ctl *SignalWSController) handleReport(c *WsSignalConn, data []byte) {
	if c.userID == "" {
		return
	}
	type reportPayload struct {
		Type           string        `json:"type"`
		ReportedUserID domain.UserID `json:"reportedUserId"`
		Reason         string        `json:"reason"`
	}
	var p reportPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad report payload")
		return
	}
	if p.ReportedUserID == "" {
		return
	}
	ctl.Orch.Report(c.userID, p.ReportedUserID, p.Reason)
}

func (ctl *SignalWSController) handleRate(c *WsSignalConn, data []byte) {
	if c.userID == "" {
		return
	}
	type ratePayload struct {
		Type        string        `json:"type"`
		RatedUserID domain.UserID `json:"ratedUserId"`
		Tag         string        `json:"tag"`
	}
	var p ratePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad rate payload")
		return
	}
	if p.RatedUserID == "" {
		return
	}
	ctl.Orch.Rate(c.userID, p.RatedUserID, p.Tag)
}

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{"pong"})
}
