package relay

import (
	"cmp"
	"slices"
)

// RoomSummary is a read-only snapshot of one room.
type RoomSummary struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
}

// RoomDirectory keeps connection sets per roomID. A room exists only while
// its set is non-empty.
type RoomDirectory struct {
	rooms    map[string]map[*Conn]struct{}
	onRemove func(roomID string)
}

// NewRoomDirectory returns an empty directory; onRemove, when set, runs
// right after a room is deleted.
func NewRoomDirectory(onRemove func(roomID string)) *RoomDirectory {
	return &RoomDirectory{
		rooms:    make(map[string]map[*Conn]struct{}),
		onRemove: onRemove,
	}
}

// Join moves c into roomID, leaving its current room first. It returns the
// room that was left, or "" if c was not a member anywhere else.
func (d *RoomDirectory) Join(roomID string, c *Conn) (left string) {
	if c.roomID == roomID {
		if _, ok := d.rooms[roomID][c]; ok {
			return ""
		}
	}
	left, _ = d.Leave(c)

	set, ok := d.rooms[roomID]
	if !ok {
		set = make(map[*Conn]struct{})
		d.rooms[roomID] = set
	}
	set[c] = struct{}{}
	c.roomID = roomID
	return left
}

// Leave removes c from its room. removed reports whether the room was
// deleted because it became empty. Leaving twice is a no-op.
func (d *RoomDirectory) Leave(c *Conn) (roomID string, removed bool) {
	roomID = c.roomID
	if roomID == "" {
		return "", false
	}
	c.roomID = ""

	set, ok := d.rooms[roomID]
	if !ok {
		return roomID, false
	}
	delete(set, c)
	if len(set) > 0 {
		return roomID, false
	}
	delete(d.rooms, roomID)
	if d.onRemove != nil {
		d.onRemove(roomID)
	}
	return roomID, true
}

func (d *RoomDirectory) Exists(roomID string) bool {
	_, ok := d.rooms[roomID]
	return ok
}

// Members returns the connections of roomID that carry an identity, ordered
// by name then id.
func (d *RoomDirectory) Members(roomID string) []*Conn {
	set := d.rooms[roomID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		if c.identity != nil {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *Conn) int {
		return cmp.Or(
			cmp.Compare(a.identity.Name, b.identity.Name),
			cmp.Compare(a.identity.ID, b.identity.ID),
			cmp.Compare(a.ID(), b.ID()),
		)
	})
	return out
}

// ListMembers is the online list of roomID.
func (d *RoomDirectory) ListMembers(roomID string) []Identity {
	members := d.Members(roomID)
	out := make([]Identity, 0, len(members))
	for _, c := range members {
		out = append(out, *c.identity)
	}
	return out
}

// Broadcast sends frame to every identified member and returns the ones
// whose send failed. A failure never stops delivery to the others.
func (d *RoomDirectory) Broadcast(roomID string, frame []byte) (failed []*Conn) {
	for _, c := range d.Members(roomID) {
		if err := c.peer.Send(frame); err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

// Summaries lists every room ordered by id.
func (d *RoomDirectory) Summaries() []RoomSummary {
	out := make([]RoomSummary, 0, len(d.rooms))
	for id, set := range d.rooms {
		out = append(out, RoomSummary{ID: id, Members: len(set)})
	}
	slices.SortFunc(out, func(a, b RoomSummary) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (d *RoomDirectory) Len() int { return len(d.rooms) }
