package friendstore

import (
	"context"
	"fmt"

	"chatrelay/internal/relay"

	"github.com/redis/go-redis/v9"
)

const (
	redisIndexKey   = "friends:index" // every name with outgoing edges
	redisFriendsKey = "friends:"      // friends:<name> -> set of friend names
)

// RedisStore keeps one set per name plus an index set of names.
type RedisStore struct {
	rdb redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.Cmdable) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Load(ctx context.Context) ([]relay.Edge, error) {
	names, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("friends index: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	// fetch all sets in one pipelined round‑trip
	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.SMembers(ctx, redisFriendsKey+name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("friends pipeline: %w", err)
	}

	var edges []relay.Edge
	for i, cmd := range cmds {
		for _, to := range cmd.Val() {
			edges = append(edges, relay.Edge{From: names[i], To: to})
		}
	}
	return edges, nil
}

func (s *RedisStore) Save(ctx context.Context, edges []relay.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for _, e := range edges {
		pipe.SAdd(ctx, redisIndexKey, e.From)
		pipe.SAdd(ctx, redisFriendsKey+e.From, e.To)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %d friend edges: %w", len(edges), err)
	}
	return nil
}
