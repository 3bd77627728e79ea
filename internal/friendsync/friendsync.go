package friendsync

import (
	"context"
	"time"

	"chatrelay/internal/relay"

	"go.uber.org/zap"
)

// Saver is the persistence side of a friend store.
type Saver interface {
	Save(ctx context.Context, edges []relay.Edge) error
}

const flushTimeout = 5 * time.Second

// Batcher persists friend edges off the hub goroutine. Edges are flushed
// every interval, or earlier once a batch is full.
type Batcher struct {
	saver    Saver
	in       chan relay.Edge
	interval time.Duration
	batch    int
	limit    int
	done     chan struct{}
}

var _ relay.EdgeSink = (*Batcher)(nil)

func New(saver Saver, interval time.Duration, batch, buffer int) *Batcher {
	if batch <= 0 {
		batch = 100
	}
	if buffer < batch {
		buffer = batch
	}
	return &Batcher{
		saver:    saver,
		in:       make(chan relay.Edge, buffer),
		interval: interval,
		batch:    batch,
		limit:    buffer,
		done:     make(chan struct{}),
	}
}

// Enqueue never blocks; when the buffer is full the edge stays in memory
// only and a warning is logged.
func (b *Batcher) Enqueue(e relay.Edge) {
	select {
	case b.in <- e:
	default:
		zap.L().Warn("friendsync.dropped", zap.String("from", e.From), zap.String("to", e.To))
	}
}

// Done is closed once Run has flushed its last batch.
func (b *Batcher) Done() <-chan struct{} { return b.done }

// Run must be started once. On cancellation it drains whatever is buffered.
func (b *Batcher) Run(ctx context.Context) {
	defer close(b.done)
	tk := time.NewTicker(b.interval)
	defer tk.Stop()

	pending := make([]relay.Edge, 0, b.batch)
	for {
		select {
		case <-ctx.Done():
			b.flush(context.Background(), b.drain(pending))
			return
		case e := <-b.in:
			pending = append(pending, e)
			if len(pending) >= b.batch {
				pending = b.flush(ctx, pending)
			}
		case <-tk.C:
			pending = b.flush(ctx, pending)
		}
	}
}

func (b *Batcher) drain(pending []relay.Edge) []relay.Edge {
	for {
		select {
		case e := <-b.in:
			pending = append(pending, e)
		default:
			return pending
		}
	}
}

// flush saves pending and returns the emptied slice. A failed batch is
// retried on the next tick; beyond the buffer size the oldest edges are
// dropped.
func (b *Batcher) flush(ctx context.Context, pending []relay.Edge) []relay.Edge {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	if err := b.saver.Save(ctx, pending); err != nil {
		zap.L().Warn("friendsync.save", zap.Int("edges", len(pending)), zap.Error(err))
		if over := len(pending) - b.limit; over > 0 {
			zap.L().Warn("friendsync.dropped", zap.Int("edges", over))
			pending = append(pending[:0], pending[over:]...)
		}
		return pending
	}
	zap.L().Debug("friendsync.saved", zap.Int("edges", len(pending)))
	return pending[:0]
}
