package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/domain"
)

func (ctl *SignalWSController) handleRegister(c *WsSignalConn, data []byte) {
	type registerPayload struct {
		Type           string                `json:"type"`
		UserID         domain.UserID         `json:"userId"`
		Name           string                `json:"name"`
		Photo          string                `json:"photo"`
		IsAnonymous    bool                  `json:"isAnonymous"`
		AnonymityLevel domain.AnonymityLevel `json:"anonymityLevel"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	profile, err := domain.NewProfile(p.UserID, p.Name, p.Photo, p.IsAnonymous, p.AnonymityLevel)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("invalid profile")
		ctl.sendError(c, "invalid_profile")
		return
	}

	ctl.Orch.Register(profile, c.connID, c)
	c.userID = profile.UserID
	ctl.sendJSON(c, struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
	}{"registered", profile.UserID})
}

func (ctl *SignalWSController) handleRequestMatch(c *WsSignalConn) {
	if c.userID == "" {
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(c.userID) {
		ctl.sendJSON(c, map[string]any{
			"type":    "matchError",
			"message": "Too many match requests. Try again in a moment.",
		})
		return
	}
	ctl.Orch.RequestMatch(c.userID)
}

func (ctl *SignalWSController) handleMatchResponse(c *WsSignalConn, data []byte) {
	if c.userID == "" {
		return
	}
	type responsePayload struct {
		Type     string        `json:"type"`
		MatchID  domain.UserID `json:"matchId"`
		Accepted bool          `json:"accepted"`
	}
	var p responsePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad matchResponse payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.MatchID == "" {
		ctl.sendError(c, "matchId required")
		return
	}
	ctl.Orch.RespondToMatch(c.userID, p.MatchID, p.Accepted)
}
