package friendstore

import (
	"context"

	"chatrelay/internal/relay"
)

// Store persists the directed friendship edges that seed the relay's
// in-memory graph at boot.
type Store interface {
	Load(ctx context.Context) ([]relay.Edge, error)
	Save(ctx context.Context, edges []relay.Edge) error
}

// Memory keeps nothing: friendships last for the life of the process.
type Memory struct{}

func (Memory) Load(context.Context) ([]relay.Edge, error) { return nil, nil }
func (Memory) Save(context.Context, []relay.Edge) error   { return nil }
