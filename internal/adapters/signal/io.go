package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/app"
)

const writeTimeout = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", c.connID).Msg("readPump closing")
		if c.userID != "" {
			ctl.Orch.OnDisconnect(c.userID, c.connID)
			if ctl.Limiter != nil {
				ctl.Limiter.Forget(c.userID)
			}
		}
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleSignal(c, data)
		}
	}
}

// handleSignal dispatches one inbound envelope. The set of types is
// closed; anything else is logged and dropped.
func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "register":
		ctl.handleRegister(c, data)
	case "requestMatch":
		ctl.handleRequestMatch(c)
	case "matchResponse":
		ctl.handleMatchResponse(c, data)
	case "message":
		ctl.handleMessage(c, data)
	case "reportUser":
		ctl.handleReport(c, data)
	case "rateChat":
		ctl.handleRate(c, data)
	case app.SigCallRequest, app.SigCallAnswer, app.SigCallReject,
		app.SigCallEnd, app.SigOffer, app.SigAnswer, app.SigICECandidate:
		ctl.handleCallSignal(c, env.Type, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, reason string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": reason,
	})
}
