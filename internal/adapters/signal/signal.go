// Package signal is the websocket adapter: it owns the duplex connections
// and translates wire envelopes into orchestrator calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/veloji/blink/internal/app"
	"github.com/veloji/blink/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const sendBufferSize = 32

type SignalWSController struct {
	Orch    *app.Orchestrator
	Limiter *MatchRateLimiter
	// SendBuffer overrides the per-connection queue size when positive.
	SendBuffer int
}

func NewSignalWSController(orch *app.Orchestrator, limiter *MatchRateLimiter) *SignalWSController {
	return &SignalWSController{Orch: orch, Limiter: limiter}
}

func (ctl *SignalWSController) sendBuffer() int {
	if ctl.SendBuffer > 0 {
		return ctl.SendBuffer
	}
	return sendBufferSize
}

// WsSignalConn is one live duplex connection. connID is minted per
// connection so a reconnect gets a fresh handle; userID is bound by the
// register handler and only touched from the read loop.
type WsSignalConn struct {
	conn   *websocket.Conn
	send   chan app.Frame
	connID string
	userID domain.UserID

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f app.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn:   ws,
		send:   make(chan app.Frame, ctl.sendBuffer()),
		connID: uuid.NewString(),
	}
	log.Info().Str("module", "signal").Str("conn", conn.connID).Str("client", token).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		ctl.writePump(ctx, conn)
		// A dead writer must also unblock the reader, which may be
		// parked inside ReadMessage.
		conn.Close()
	}()
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}
