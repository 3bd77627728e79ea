package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrHubStopped is returned to callers that reach the hub after Run exited.
var ErrHubStopped = errors.New("hub stopped")

type eventKind int

const (
	evRegister eventKind = iota
	evFrame
	evDisconnect
	evQuery
)

type event struct {
	kind  eventKind
	conn  *Conn
	frame []byte
	query func()
}

// Options tune a Hub. Zero values fall back to the defaults below.
type Options struct {
	LivenessInterval time.Duration
	QueueSize        int
	// Sink, if set, receives every newly added friend edge.
	Sink EdgeSink
}

const (
	defaultLivenessInterval = 30 * time.Second
	defaultQueueSize        = 1024
)

// Stats is a point-in-time count of the hub's state.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
	Present     int `json:"present"`
}

// Hub owns every registry of the relay. All state is touched only by the
// goroutine running Run; transports talk to it through one ordered queue.
type Hub struct {
	rooms    *RoomDirectory
	typing   *TypingAggregator
	presence *PresenceTracker
	friends  FriendGraph
	sink     EdgeSink
	router   *Router
	monitor  *LivenessMonitor

	conns   map[*Conn]struct{}
	pending map[*Conn]string

	queue chan event
	done  chan struct{}
}

func NewHub(friends FriendGraph, opts Options) *Hub {
	if opts.LivenessInterval <= 0 {
		opts.LivenessInterval = defaultLivenessInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	typing := NewTypingAggregator()
	h := &Hub{
		rooms:    NewRoomDirectory(typing.Drop),
		typing:   typing,
		presence: NewPresenceTracker(friends),
		friends:  friends,
		sink:     opts.Sink,
		router:   NewRouter(),
		monitor:  NewLivenessMonitor(opts.LivenessInterval),
		conns:    make(map[*Conn]struct{}),
		pending:  make(map[*Conn]string),
		queue:    make(chan event, opts.QueueSize),
		done:     make(chan struct{}),
	}
	h.registerHandlers()
	return h
}

// ---------------------------------------------------------------------------
//  Transport-facing API (safe from any goroutine)
// ---------------------------------------------------------------------------

// Register records a freshly accepted peer. Frames for the returned Conn
// must be passed to Receive, and Disconnect called once the peer is gone.
func (h *Hub) Register(p Peer) *Conn {
	c := newConn(p)
	h.enqueue(event{kind: evRegister, conn: c})
	return c
}

func (h *Hub) Receive(c *Conn, frame []byte) {
	h.enqueue(event{kind: evFrame, conn: c, frame: frame})
}

func (h *Hub) Disconnect(c *Conn) {
	h.enqueue(event{kind: evDisconnect, conn: c})
}

func (h *Hub) enqueue(ev event) bool {
	select {
	case h.queue <- ev:
		return true
	case <-h.done:
		return false
	}
}

// do runs fn on the hub goroutine and waits for it.
func (h *Hub) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	ev := event{kind: evQuery, query: func() {
		fn()
		close(finished)
	}}
	select {
	case h.queue <- ev:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := h.do(ctx, func() {
		s = Stats{Rooms: h.rooms.Len(), Connections: len(h.conns), Present: h.presence.Len()}
	})
	return s, err
}

func (h *Hub) Rooms(ctx context.Context) ([]RoomSummary, error) {
	var out []RoomSummary
	err := h.do(ctx, func() { out = h.rooms.Summaries() })
	return out, err
}

// Room returns the online list of roomID and whether the room exists.
func (h *Hub) Room(ctx context.Context, roomID string) ([]Identity, bool, error) {
	var (
		users []Identity
		found bool
	)
	err := h.do(ctx, func() {
		found = h.rooms.Exists(roomID)
		if found {
			users = h.rooms.ListMembers(roomID)
		}
	})
	return users, found, err
}

// Run processes queued events and liveness ticks until ctx is cancelled,
// then closes every remaining peer.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.monitor.Interval())
	defer ticker.Stop()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.queue:
			h.handle(ev)
		case <-ticker.C:
			h.sweep()
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for c := range h.conns {
		_ = c.peer.Close()
	}
	zap.L().Info("relay.hub_stopped", zap.Int("connections", len(h.conns)))
}

// ---------------------------------------------------------------------------
//  Hub goroutine only
// ---------------------------------------------------------------------------

func (h *Hub) handle(ev event) {
	switch ev.kind {
	case evRegister:
		h.conns[ev.conn] = struct{}{}
	case evFrame:
		h.receive(ev.conn, ev.frame)
	case evDisconnect:
		h.cleanup(ev.conn)
	case evQuery:
		ev.query()
	}
	h.evictPending()
}

func (h *Hub) receive(c *Conn, frame []byte) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	evt, err := h.router.dispatch(c, frame)
	if err != nil {
		zap.L().Debug("relay.drop",
			zap.String("conn", c.ID()),
			zap.String("event", evt),
			zap.Error(err),
		)
	}
}

func (h *Hub) sweep() {
	for _, c := range h.monitor.Sweep(h.conns) {
		h.pending[c] = "liveness timeout"
	}
	h.evictPending()
}

// evictPending terminates connections that failed a send or a probe. Cleanup
// may fail further sends, so the loop runs until nothing is left.
func (h *Hub) evictPending() {
	for len(h.pending) > 0 {
		for c, reason := range h.pending {
			delete(h.pending, c)
			zap.L().Info("relay.evict", zap.String("conn", c.ID()), zap.String("reason", reason))
			_ = c.peer.Close()
			h.cleanup(c)
		}
	}
}

// cleanup is the single disconnect path: explicit close, liveness eviction
// and slow-consumer eviction all end here. Calling it twice is a no-op.
func (h *Hub) cleanup(c *Conn) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)

	roomID := c.roomID
	if c.identity != nil && roomID != "" {
		h.typing.Clear(roomID, *c.identity)
	}
	h.rooms.Leave(c)
	wasPresent := h.releasePresence(c)

	if roomID != "" && h.rooms.Exists(roomID) {
		h.broadcastOnline(roomID)
		h.broadcastTyping(roomID)
	}
	if wasPresent {
		h.broadcastPresence()
	}
}

// releasePresence drops c's presence entry. If another joined connection
// still uses the same name, the entry passes to it, lowest connection id
// first.
func (h *Hub) releasePresence(c *Conn) bool {
	if !h.presence.Remove(c) {
		return false
	}
	var heir *Conn
	for o := range h.conns {
		if o == c || !o.joined() || o.identity.Name != c.identity.Name {
			continue
		}
		if heir == nil || o.ID() < heir.ID() {
			heir = o
		}
	}
	if heir != nil {
		h.presence.Upsert(heir, heir.roomID)
	}
	return true
}

// ---------------------------------------------------------------------------
//  Outbound helpers
// ---------------------------------------------------------------------------

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Every outbound type is a plain struct; this cannot happen.
		zap.L().Error("relay.encode", zap.Error(err))
		return nil
	}
	return b
}

func (h *Hub) send(c *Conn, v any) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	frame := encode(v)
	if frame == nil {
		return
	}
	if err := c.peer.Send(frame); err != nil {
		h.pending[c] = err.Error()
	}
}

func (h *Hub) broadcastOnline(roomID string) {
	frame := encode(OnlineList{Type: EventOnlineList, Users: h.rooms.ListMembers(roomID)})
	for _, c := range h.rooms.Broadcast(roomID, frame) {
		h.pending[c] = "send failed"
	}
}

// broadcastTyping projects the typing set separately for every member.
func (h *Hub) broadcastTyping(roomID string) {
	for _, c := range h.rooms.Members(roomID) {
		h.sendTyping(c, roomID)
	}
}

func (h *Hub) sendTyping(c *Conn, roomID string) {
	h.send(c, TypingStatus{Type: EventTypingStatus, Users: h.typing.ViewFor(roomID, *c.identity)})
}

func (h *Hub) broadcastPresence() {
	for _, c := range h.presence.Conns() {
		h.sendPresence(c)
	}
}

func (h *Hub) sendPresence(c *Conn) {
	h.send(c, Presence{Type: EventPresence, Users: h.presence.ViewFor(*c.identity)})
}
