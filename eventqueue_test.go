package eventqueue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	eventqueue "github.com/tower120/lockless-event-queue"
)

func collect[T any](r *eventqueue.Reader[T]) []T {
	var out []T
	r.Read(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Scenario 1: subscription is not retroactive.
func TestSubscriptionNotRetroactive(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	q.Push(1)
	q.Push(2)

	r := q.Subscribe()
	defer r.Close()

	require.Empty(t, collect(r))
}

// Scenario 2: broadcast FIFO, two readers see the same sequence.
func TestBroadcastFIFO(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	r1 := q.Subscribe()
	defer r1.Close()
	r2 := q.Subscribe()
	defer r2.Close()

	q.Push(10)
	q.Push(20)
	q.Push(30)

	require.Equal(t, []int{10, 20, 30}, collect(r1))
	require.Equal(t, []int{10, 20, 30}, collect(r2))
}

// Scenario 4: cleanup gate — chunk reclamation waits for the slowest reader.
func TestCleanupGate(t *testing.T) {
	q, err := eventqueue.New[int](eventqueue.WithMinChunkSize(2), eventqueue.WithMaxChunkSize(2))
	require.NoError(t, err)

	a := q.Subscribe()
	defer a.Close()
	b := q.Subscribe()
	defer b.Close()

	for i := 1; i <= 5; i++ {
		q.Push(i)
	}

	require.Equal(t, []int{1, 2, 3, 4, 5}, collect(a))
	q.Cleanup()
	require.GreaterOrEqual(t, q.ChunksCount(), 2)

	require.Equal(t, []int{1, 2, 3, 4, 5}, collect(b))
	q.Cleanup()
	require.Equal(t, 1, q.ChunksCount())
}

// Scenario 5: Clear discards everything buffered so far.
func TestClear(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	r := q.Subscribe()
	defer r.Close()

	q.Push(1)
	q.Push(2)
	q.Clear()
	q.Push(3)
	q.Push(4)

	require.Equal(t, []int{3, 4}, collect(r))
}

// Law: at-most-once per reader across repeated Read calls.
func TestAtMostOncePerReader(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	r := q.Subscribe()
	defer r.Close()

	q.Push(1)
	q.Push(2)

	first := collect(r)
	second := collect(r)

	require.Equal(t, []int{1, 2}, first)
	require.Empty(t, second)
}

// Law: UpdatePosition is idempotent absent new producer activity.
func TestUpdatePositionIdempotent(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	r := q.Subscribe()
	defer r.Close()

	q.Push(1)
	q.Clear()

	r.UpdatePosition()
	r.UpdatePosition()

	require.Empty(t, collect(r))
}

// Law: UpdatePosition never consumes an element. Unlike Clear/TruncateFront,
// plain backlog with no epoch change must still be fully delivered by a
// later Read.
func TestUpdatePositionDoesNotDropBacklog(t *testing.T) {
	q, err := eventqueue.New[int]()
	require.NoError(t, err)

	r := q.Subscribe()
	defer r.Close()

	q.Push(1)
	q.Push(2)
	q.Push(3)

	r.UpdatePosition()

	require.Equal(t, []int{1, 2, 3}, collect(r))
}

// Law: truncate-front's return value matches the drop in ChunksCount once a
// reader that was already subscribed crosses the truncated chunks, and a
// laggard reader catches up to the truncation point rather than the full
// backlog (it is forced forward exactly as Clear forces readers forward).
func TestTruncateFrontReturnValue(t *testing.T) {
	q, err := eventqueue.New[int](eventqueue.WithMinChunkSize(2), eventqueue.WithMaxChunkSize(2))
	require.NoError(t, err)

	r := q.Subscribe()
	defer r.Close()

	for i := 1; i <= 8; i++ {
		q.Push(i)
	}

	// Four chunks of capacity 2 hold ids 0..3; truncating to the last two
	// chunks (ids 2,3) makes chunks 0 and 1 reclaimable once every
	// subscriber has crossed them.
	freed := q.TruncateFront(2)
	require.Equal(t, 2, freed)
	require.Equal(t, 4, q.ChunksCount(), "truncate alone must not reclaim chunks a reader hasn't crossed yet")

	// UpdatePosition moves the reader to the truncation point, crossing
	// exactly chunks 0 and 1; a full Read would also cross chunk 2.
	r.UpdatePosition()
	q.Cleanup()
	require.Equal(t, 2, q.ChunksCount())

	require.Equal(t, []int{5, 6, 7, 8}, collect(r))
}

func TestOptionValidation(t *testing.T) {
	_, err := eventqueue.New[int](eventqueue.WithMinChunkSize(0))
	require.Error(t, err)

	_, err = eventqueue.New[int](eventqueue.WithMinChunkSize(8), eventqueue.WithMaxChunkSize(4))
	require.Error(t, err)
}

func TestDoubleBuffering(t *testing.T) {
	q, err := eventqueue.New[int](
		eventqueue.WithMinChunkSize(2),
		eventqueue.WithMaxChunkSize(2),
		eventqueue.WithDoubleBuffering(),
	)
	require.NoError(t, err)

	r := q.Subscribe()
	for i := 1; i <= 6; i++ {
		q.Push(i)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, collect(r))
	q.Cleanup()
	r.Close()

	// Further pushes should still work fine after chunks have been
	// recycled and reclaimed.
	r2 := q.Subscribe()
	defer r2.Close()
	q.Push(7)
	q.Push(8)
	require.Equal(t, []int{7, 8}, collect(r2))
}

func TestConcurrentProducersAndReaders(t *testing.T) {
	const producers = 4
	const perProducer = 200
	const readers = 5

	q, err := eventqueue.New[int](eventqueue.WithMinChunkSize(8), eventqueue.WithMaxChunkSize(64))
	require.NoError(t, err)

	rs := make([]*eventqueue.Reader[int], readers)
	for i := range rs {
		rs[i] = q.Subscribe()
	}

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	counts := make([]int, readers)
	for i := range rs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 0
			_ = eventqueue.Drain(ctx, rs[i], func(int) bool {
				n++
				return n < producers*perProducer
			})
			counts[i] = n
		}()
	}
	wg.Wait()

	for i, r := range rs {
		require.Equal(t, producers*perProducer, counts[i])
		r.Close()
	}
}
