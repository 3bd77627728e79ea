package relay

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// presenceEntry points at a connection the hub does not own; the entry is
// removed on disconnect rather than trusted to stay valid.
type presenceEntry struct {
	conn   *Conn
	roomID string
}

// PresenceTracker maps identity name to the connection and room it is in,
// process-wide.
type PresenceTracker struct {
	entries map[string]presenceEntry
	friends FriendGraph
}

func NewPresenceTracker(friends FriendGraph) *PresenceTracker {
	return &PresenceTracker{
		entries: make(map[string]presenceEntry),
		friends: friends,
	}
}

// Upsert records c, which must carry an identity, as present in roomID. A
// second connection using the same name takes the entry over.
func (p *PresenceTracker) Upsert(c *Conn, roomID string) {
	p.entries[c.identity.Name] = presenceEntry{conn: c, roomID: roomID}
}

// Remove deletes the entry of c's identity only if it still belongs to c.
func (p *PresenceTracker) Remove(c *Conn) bool {
	if c.identity == nil {
		return false
	}
	e, ok := p.entries[c.identity.Name]
	if !ok || e.conn != c {
		return false
	}
	delete(p.entries, c.identity.Name)
	return true
}

func (p *PresenceTracker) Lookup(name string) (*Conn, bool) {
	e, ok := p.entries[name]
	return e.conn, ok
}

// Conns returns the connections of every present identity, ordered by name.
func (p *PresenceTracker) Conns() []*Conn {
	names := lo.Keys(p.entries)
	slices.Sort(names)
	return lo.Map(names, func(n string, _ int) *Conn { return p.entries[n].conn })
}

// ViewFor lists every other present identity. The room is only revealed
// when viewer and target are mutual friends; otherwise the row is kept with
// a nil room.
func (p *PresenceTracker) ViewFor(viewer Identity) []PresenceView {
	out := make([]PresenceView, 0, len(p.entries))
	for name, e := range p.entries {
		if name == viewer.Name {
			continue
		}
		row := PresenceView{Name: name}
		if p.friends.Mutual(viewer.Name, name) {
			room := e.roomID
			row.Room = &room
			row.CanSeeRoom = true
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b PresenceView) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (p *PresenceTracker) Len() int { return len(p.entries) }
