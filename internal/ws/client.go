package ws

import (
	"errors"
	"sync"
	"time"

	"chatrelay/internal/relay"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	errPeerClosed     = errors.New("peer closed")
	errSendBufferFull = errors.New("send buffer full")
)

// clientConn adapts one gorilla socket to relay.Peer. Only writePump writes
// to the socket; Send and Ping just queue.
type clientConn struct {
	id        string
	rawConn   *websocket.Conn
	send      chan []byte
	ping      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	writeWait time.Duration
}

var _ relay.Peer = (*clientConn)(nil)

func newClientConn(id string, raw *websocket.Conn, buffer int, writeWait time.Duration) *clientConn {
	return &clientConn{
		id:        id,
		rawConn:   raw,
		send:      make(chan []byte, buffer),
		ping:      make(chan struct{}, 1),
		closed:    make(chan struct{}),
		writeWait: writeWait,
	}
}

func (c *clientConn) ID() string { return c.id }

func (c *clientConn) Send(frame []byte) error {
	select {
	case <-c.closed:
		return errPeerClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return errSendBufferFull
	}
}

// Ping queues a liveness probe. A probe that is already queued counts.
func (c *clientConn) Ping() error {
	select {
	case <-c.closed:
		return errPeerClosed
	case c.ping <- struct{}{}:
	default:
	}
	return nil
}

// Close terminates the socket; the read pump then reports the disconnect.
func (c *clientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.rawConn.Close()
	})
	return err
}

func (c *clientConn) write(mt int, data []byte) error {
	_ = c.rawConn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.rawConn.WriteMessage(mt, data) // Text/Binary only
}

func (c *clientConn) readPump(hub *relay.Hub, conn *relay.Conn, maxFrame int64) {
	defer func() {
		hub.Disconnect(conn)
		_ = c.Close()
	}()

	if maxFrame > 0 {
		c.rawConn.SetReadLimit(maxFrame)
	}
	c.rawConn.SetPongHandler(func(string) error {
		conn.MarkAlive()
		return nil
	})

	for {
		mt, data, err := c.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				zap.L().Debug("ws.read", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		hub.Receive(conn, data)
	}
}

func (c *clientConn) writePump() {
	defer func() { _ = c.Close() }()

	for {
		select {
		case <-c.closed:
			return
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				zap.L().Debug("ws.write", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-c.ping:
			deadline := time.Now().Add(c.writeWait)
			if err := c.rawConn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				zap.L().Debug("ws.ping", zap.String("conn", c.id), zap.Error(err))
				return
			}
		}
	}
}
