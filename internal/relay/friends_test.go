package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryGraph(t *testing.T) {
	g := NewMemoryGraph(Edge{From: "a", To: "b"})

	assert.False(t, g.Mutual("a", "b"))
	assert.False(t, g.Add("a", "b"), "duplicate edge")
	assert.False(t, g.Add("a", "a"), "self edge")
	assert.False(t, g.Add("", "a"))

	assert.True(t, g.Add("b", "a"))
	assert.True(t, g.Mutual("a", "b"))
	assert.True(t, g.Mutual("b", "a"))

	g.Ensure("c")
	assert.False(t, g.Mutual("a", "c"))
	assert.Equal(t, []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}, g.Edges())
}
