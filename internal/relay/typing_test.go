package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypingAggregator_ViewFor(t *testing.T) {
	alice := Identity{ID: "1", Name: "Alice"}
	bob := Identity{ID: "2", Name: "Bob"}
	carol := Identity{ID: "3", Name: "Carol"}

	tests := []struct {
		name   string
		setup  func(*TypingAggregator)
		viewer Identity
		want   []string
	}{
		{
			name:   "unknown room",
			setup:  func(*TypingAggregator) {},
			viewer: alice,
			want:   []string{},
		},
		{
			name: "viewer typing alone sees nobody",
			setup: func(ta *TypingAggregator) {
				ta.SetTyping("r", alice, true)
			},
			viewer: alice,
			want:   []string{},
		},
		{
			name: "others sorted by name",
			setup: func(ta *TypingAggregator) {
				ta.SetTyping("r", carol, true)
				ta.SetTyping("r", alice, true)
				ta.SetTyping("r", bob, true)
			},
			viewer: bob,
			want:   []string{"Alice", "Carol"},
		},
		{
			name: "false flag and clear remove",
			setup: func(ta *TypingAggregator) {
				ta.SetTyping("r", alice, true)
				ta.SetTyping("r", bob, true)
				ta.SetTyping("r", carol, true)
				ta.SetTyping("r", alice, false)
				ta.Clear("r", carol)
			},
			viewer: Identity{ID: "9", Name: "Viewer"},
			want:   []string{"Bob"},
		},
		{
			name: "connections sharing an id share one flag",
			setup: func(ta *TypingAggregator) {
				ta.SetTyping("r", alice, true)
				ta.SetTyping("r", Identity{ID: "1", Name: "Alice"}, false)
			},
			viewer: bob,
			want:   []string{},
		},
		{
			name: "rooms are independent",
			setup: func(ta *TypingAggregator) {
				ta.SetTyping("other", alice, true)
			},
			viewer: bob,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := NewTypingAggregator()
			tt.setup(ta)
			assert.Equal(t, tt.want, ta.ViewFor("r", tt.viewer))
		})
	}
}

func TestTypingAggregator_Drop(t *testing.T) {
	ta := NewTypingAggregator()
	ta.SetTyping("r", Identity{ID: "1", Name: "A"}, true)
	assert.True(t, ta.Has("r"))

	ta.Drop("r")
	assert.False(t, ta.Has("r"))
	ta.Clear("r", Identity{ID: "1"})
	assert.False(t, ta.Has("r"))
}
