package relay

import "go.uber.org/zap"

func (h *Hub) registerHandlers() {
	Register(h.router, EventJoin, h.onJoin)
	Register(h.router, EventMessage, h.onMessage)
	Register(h.router, EventTyping, h.onTyping)
	Register(h.router, EventPrivateMessage, h.onPrivateMessage)
	Register(h.router, EventAddFriend, h.onAddFriend)
	Register(h.router, EventRequestPresence, h.onRequestPresence)
	Register(h.router, EventKeepalive, func(*Conn, EmptyRequest) error { return nil })
}

// onJoin treats a second join as a replace: the old room is left first and
// told about it, then the new room is entered.
func (h *Hub) onJoin(c *Conn, req JoinRequest) error {
	wasTyping := false
	if c.identity != nil {
		if c.roomID != "" {
			wasTyping = c.roomID == req.RoomID && h.typing.IsTyping(c.roomID, *c.identity)
			h.typing.Clear(c.roomID, *c.identity)
		}
		if h.releasePresence(c) && c.identity.Name != req.User.Name {
			zap.L().Debug("relay.rename",
				zap.String("conn", c.ID()),
				zap.String("from", c.identity.Name),
				zap.String("to", req.User.Name),
			)
		}
	}

	id := *req.User
	c.identity = &id

	left := h.rooms.Join(req.RoomID, c)
	if left != "" && h.rooms.Exists(left) {
		h.broadcastOnline(left)
		h.broadcastTyping(left)
	}

	h.presence.Upsert(c, req.RoomID)
	h.friends.Ensure(id.Name)

	h.send(c, Joined{Type: EventJoined, RoomID: req.RoomID})
	h.broadcastOnline(req.RoomID)
	if wasTyping {
		h.broadcastTyping(req.RoomID)
	} else {
		h.sendTyping(c, req.RoomID)
	}
	h.broadcastPresence()
	return nil
}

func (h *Hub) onMessage(c *Conn, req MessageRequest) error {
	if !c.joined() {
		return ErrNotJoined
	}
	roomID := c.roomID
	h.typing.Clear(roomID, *c.identity)

	frame := encode(ChatMessage{Type: EventMessage, User: *c.identity, Text: req.Text})
	for _, f := range h.rooms.Broadcast(roomID, frame) {
		h.pending[f] = "send failed"
	}
	h.broadcastTyping(roomID)
	return nil
}

func (h *Hub) onTyping(c *Conn, req TypingRequest) error {
	if !c.joined() {
		return ErrNotJoined
	}
	h.typing.SetTyping(c.roomID, *c.identity, *req.Typing)
	h.broadcastTyping(c.roomID)
	return nil
}

// onPrivateMessage delivers to the target when present and always echoes
// the frame back to the sender.
func (h *Hub) onPrivateMessage(c *Conn, req PrivateMessageRequest) error {
	if c.identity == nil {
		return ErrNoIdentity
	}
	msg := PrivateMessage{
		Type: EventPrivateMessage,
		From: c.identity.Name,
		To:   req.To,
		User: *c.identity,
		Text: req.Text,
	}
	if target, ok := h.presence.Lookup(req.To); ok && target != c {
		h.send(target, msg)
	}
	h.send(c, msg)
	return nil
}

func (h *Hub) onAddFriend(c *Conn, req AddFriendRequest) error {
	if c.identity == nil {
		return ErrNoIdentity
	}
	if req.Friend == c.identity.Name {
		return ErrSelfFriend
	}
	if h.friends.Add(c.identity.Name, req.Friend) && h.sink != nil {
		h.sink.Enqueue(Edge{From: c.identity.Name, To: req.Friend})
	}
	h.broadcastPresence()
	return nil
}

func (h *Hub) onRequestPresence(c *Conn, _ EmptyRequest) error {
	if c.identity == nil {
		return ErrNoIdentity
	}
	h.sendPresence(c)
	return nil
}
