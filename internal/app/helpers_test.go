package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/veloji/blink/internal/domain"
	"github.com/veloji/blink/internal/observe"
)

// captureConn records every frame emitted to it.
type captureConn struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *captureConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(Frame, len(f))
	copy(cp, f)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *captureConn) Close() {}

// types returns the "type" field of every captured frame, in order.
func (c *captureConn) types(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(f, &env); err != nil {
			t.Fatalf("captured frame is not JSON: %v", err)
		}
		out = append(out, env.Type)
	}
	return out
}

// last decodes the most recent frame with the given type into v.
func (c *captureConn) last(t *testing.T, typ string, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(c.frames[i], &env); err != nil {
			continue
		}
		if env.Type == typ {
			if err := json.Unmarshal(c.frames[i], v); err != nil {
				t.Fatalf("decode %s: %v", typ, err)
			}
			return
		}
	}
	t.Fatalf("no frame of type %q captured (have %v)", typ, c.types(t))
}

func (c *captureConn) has(t *testing.T, typ string) bool {
	t.Helper()
	for _, got := range c.types(t) {
		if got == typ {
			return true
		}
	}
	return false
}

func newTestOrch(t *testing.T, ttl time.Duration) *Orchestrator {
	t.Helper()
	return NewOrchestrator(NewRooms(ttl), NewRandomSelector(1), nil, observe.New())
}

// registerUser registers a non-anonymous open profile and returns its conn.
func registerUser(t *testing.T, o *Orchestrator, id domain.UserID) *captureConn {
	t.Helper()
	p, err := domain.NewProfile(id, string(id)+"-name", string(id)+".png", false, domain.AnonymityOpen)
	if err != nil {
		t.Fatal(err)
	}
	conn := &captureConn{}
	o.Register(p, string(id)+"-conn", conn)
	return conn
}

// waitFor polls until the connection has captured an event of this type.
func waitFor(t *testing.T, c *captureConn, typ string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.has(t, typ) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q (have %v)", typ, c.types(t))
}
