package relay

import (
	"slices"

	"github.com/samber/lo"
)

// TypingAggregator holds, per room, the identities currently typing keyed
// by identity id. An id names one user: connections sharing an id in a room
// share a single flag. Views are projected per viewer at broadcast time.
type TypingAggregator struct {
	rooms map[string]map[string]Identity
}

func NewTypingAggregator() *TypingAggregator {
	return &TypingAggregator{rooms: make(map[string]map[string]Identity)}
}

func (t *TypingAggregator) SetTyping(roomID string, id Identity, typing bool) {
	set, ok := t.rooms[roomID]
	if !ok {
		set = make(map[string]Identity)
		t.rooms[roomID] = set
	}
	if typing {
		set[id.ID] = id
		return
	}
	delete(set, id.ID)
}

// Clear removes id from roomID regardless of its current flag.
func (t *TypingAggregator) Clear(roomID string, id Identity) {
	if set, ok := t.rooms[roomID]; ok {
		delete(set, id.ID)
	}
}

// Drop forgets the whole typing set of roomID.
func (t *TypingAggregator) Drop(roomID string) { delete(t.rooms, roomID) }

func (t *TypingAggregator) Has(roomID string) bool {
	_, ok := t.rooms[roomID]
	return ok
}

func (t *TypingAggregator) IsTyping(roomID string, id Identity) bool {
	_, ok := t.rooms[roomID][id.ID]
	return ok
}

// ViewFor returns the sorted names typing in roomID, never including viewer.
func (t *TypingAggregator) ViewFor(roomID string, viewer Identity) []string {
	others := lo.OmitByKeys(t.rooms[roomID], []string{viewer.ID})
	names := lo.MapToSlice(others, func(_ string, id Identity) string { return id.Name })
	slices.Sort(names)
	return names
}
