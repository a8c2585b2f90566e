package app

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// Conn abstracts the signaling transport endpoint of one live connection.
// Owned by the adapter; the adapter must Close() it. Sends never block:
// a full buffer or a closed connection is the sender's problem, not ours.
type Conn interface {
	TrySend(Frame) error
	Close()
}
