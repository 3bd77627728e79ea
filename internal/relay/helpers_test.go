package relay

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errQueueFull = errors.New("send buffer full")

type fakePeer struct {
	id      string
	mu      sync.Mutex
	frames  [][]byte
	pings   int
	closed  bool
	sendErr error
	pingErr error
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.frames = append(p.frames, frame)
	return nil
}

func (p *fakePeer) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pingErr != nil {
		return p.pingErr
	}
	p.pings++
	return nil
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) pingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pings
}

func (p *fakePeer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = nil
}

// framesOfType decodes every received frame tagged typ.
func framesOfType[T any](t *testing.T, p *fakePeer, typ string) []T {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []T
	for _, f := range p.frames {
		var env envelope
		require.NoError(t, json.Unmarshal(f, &env))
		if env.Type != typ {
			continue
		}
		var v T
		require.NoError(t, json.Unmarshal(f, &v))
		out = append(out, v)
	}
	return out
}

func lastOfType[T any](t *testing.T, p *fakePeer, typ string) T {
	t.Helper()
	all := framesOfType[T](t, p, typ)
	require.NotEmpty(t, all, "no %s frame received by %s", typ, p.id)
	return all[len(all)-1]
}

func (p *fakePeer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// testHub drives a Hub synchronously without its Run loop.
type testHub struct {
	t *testing.T
	*Hub
	graph *MemoryGraph
}

func newTestHub(t *testing.T, opts Options) *testHub {
	g := NewMemoryGraph()
	return &testHub{t: t, Hub: NewHub(g, opts), graph: g}
}

func (h *testHub) connect(id string) (*Conn, *fakePeer) {
	p := &fakePeer{id: id}
	c := newConn(p)
	h.handle(event{kind: evRegister, conn: c})
	return c, p
}

func (h *testHub) sendJSON(c *Conn, v any) {
	h.t.Helper()
	b, err := json.Marshal(v)
	require.NoError(h.t, err)
	h.handle(event{kind: evFrame, conn: c, frame: b})
}

func (h *testHub) sendRaw(c *Conn, frame string) {
	h.handle(event{kind: evFrame, conn: c, frame: []byte(frame)})
}

func (h *testHub) join(c *Conn, roomID, id, name string) {
	h.t.Helper()
	h.sendJSON(c, map[string]any{
		"type":   EventJoin,
		"roomId": roomID,
		"user":   map[string]string{"id": id, "name": name},
	})
}

func (h *testHub) close(c *Conn) {
	h.handle(event{kind: evDisconnect, conn: c})
}

func identified(id, name string) *Conn {
	c := newConn(&fakePeer{id: "conn-" + id})
	c.identity = &Identity{ID: id, Name: name}
	return c
}

func strPtr(s string) *string { return &s }
