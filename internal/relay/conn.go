package relay

import "sync/atomic"

// Peer is the outbound half of a transport connection. Implementations must
// never block: Send and Ping either queue the frame or fail.
type Peer interface {
	ID() string
	Send(frame []byte) error
	Ping() error
	Close() error
}

// Conn is the hub's record of one accepted peer. identity and roomID are
// owned by the hub goroutine; alive is flipped by the transport.
type Conn struct {
	peer     Peer
	identity *Identity
	roomID   string
	alive    atomic.Bool
}

func newConn(p Peer) *Conn {
	c := &Conn{peer: p}
	c.alive.Store(true)
	return c
}

func (c *Conn) ID() string { return c.peer.ID() }

// MarkAlive records a liveness acknowledgment from the peer.
func (c *Conn) MarkAlive() { c.alive.Store(true) }

func (c *Conn) joined() bool { return c.identity != nil && c.roomID != "" }
