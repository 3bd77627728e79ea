package relay

import (
	"cmp"
	"slices"
	"sync"
)

// Edge means From has marked To as a friend.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FriendGraph is the directed friendship relation. Room visibility requires
// the edge in both directions.
type FriendGraph interface {
	Ensure(name string)
	Add(from, to string) bool
	Mutual(a, b string) bool
}

// EdgeSink receives newly added edges for persistence. Enqueue must not block.
type EdgeSink interface {
	Enqueue(e Edge)
}

type MemoryGraph struct {
	mu    sync.RWMutex
	edges map[string]map[string]struct{}
}

var _ FriendGraph = (*MemoryGraph)(nil)

// NewMemoryGraph builds a graph pre-loaded with seed, typically the edges
// read back from a friend store at boot.
func NewMemoryGraph(seed ...Edge) *MemoryGraph {
	g := &MemoryGraph{edges: make(map[string]map[string]struct{})}
	for _, e := range seed {
		g.Add(e.From, e.To)
	}
	return g
}

// Ensure creates an empty adjacency entry for name.
func (g *MemoryGraph) Ensure(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[name]; !ok {
		g.edges[name] = make(map[string]struct{})
	}
}

// Add inserts from→to and reports whether the edge is new.
func (g *MemoryGraph) Add(from, to string) bool {
	if from == "" || to == "" || from == to {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.edges[from]
	if !ok {
		set = make(map[string]struct{})
		g.edges[from] = set
	}
	if _, dup := set[to]; dup {
		return false
	}
	set[to] = struct{}{}
	return true
}

func (g *MemoryGraph) Mutual(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ab := g.edges[a][b]
	_, ba := g.edges[b][a]
	return ab && ba
}

// Edges returns every edge ordered by (From, To).
func (g *MemoryGraph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Edge
	for from, set := range g.edges {
		for to := range set {
			out = append(out, Edge{From: from, To: to})
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return out
}
