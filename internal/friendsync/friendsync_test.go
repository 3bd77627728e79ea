package friendsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatrelay/internal/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	mu      sync.Mutex
	batches [][]relay.Edge
	fails   int
}

func (f *fakeSaver) Save(_ context.Context, edges []relay.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("store down")
	}
	f.batches = append(f.batches, append([]relay.Edge(nil), edges...))
	return nil
}

func (f *fakeSaver) saved() []relay.Edge {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []relay.Edge
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func (f *fakeSaver) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestBatcher_FlushesFullBatch(t *testing.T) {
	saver := &fakeSaver{}
	b := New(saver, time.Hour, 2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.Enqueue(relay.Edge{From: "a", To: "b"})
	b.Enqueue(relay.Edge{From: "b", To: "a"})

	require.Eventually(t, func() bool { return saver.batchCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []relay.Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}, saver.saved())
}

func TestBatcher_FlushesOnTick(t *testing.T) {
	saver := &fakeSaver{}
	b := New(saver, 20*time.Millisecond, 100, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.Enqueue(relay.Edge{From: "a", To: "b"})

	require.Eventually(t, func() bool { return len(saver.saved()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestBatcher_RetriesFailedBatch(t *testing.T) {
	saver := &fakeSaver{fails: 1}
	b := New(saver, 20*time.Millisecond, 100, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.Enqueue(relay.Edge{From: "a", To: "b"})

	require.Eventually(t, func() bool { return len(saver.saved()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestBatcher_DrainsOnStop(t *testing.T) {
	saver := &fakeSaver{}
	b := New(saver, time.Hour, 100, 100)
	ctx, cancel := context.WithCancel(context.Background())

	b.Enqueue(relay.Edge{From: "a", To: "b"})
	b.Enqueue(relay.Edge{From: "a", To: "c"})
	cancel()
	b.Run(ctx)

	select {
	case <-b.Done():
	default:
		t.Fatal("done not closed")
	}
	assert.ElementsMatch(t, []relay.Edge{{From: "a", To: "b"}, {From: "a", To: "c"}}, saver.saved())
}

func TestBatcher_EnqueueNeverBlocks(t *testing.T) {
	b := New(&fakeSaver{}, time.Hour, 1, 1)
	b.Enqueue(relay.Edge{From: "a", To: "b"})
	b.Enqueue(relay.Edge{From: "a", To: "c"}) // dropped

	assert.Len(t, b.in, 1)
}

func TestBatcher_FailedBacklogIsCapped(t *testing.T) {
	saver := &fakeSaver{fails: 10}
	b := New(saver, time.Hour, 2, 3)

	pending := b.flush(context.Background(), []relay.Edge{
		{From: "a", To: "b"},
		{From: "a", To: "c"},
		{From: "a", To: "d"},
		{From: "a", To: "e"},
		{From: "a", To: "f"},
	})

	assert.Equal(t, []relay.Edge{{From: "a", To: "d"}, {From: "a", To: "e"}, {From: "a", To: "f"}}, pending)
	assert.Empty(t, saver.saved())
}
