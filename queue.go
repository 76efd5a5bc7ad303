package eventqueue

import (
	"sync"
	"sync/atomic"
)

// Queue is a multi-producer / multi-consumer broadcast event queue. Every
// value Pushed is delivered, in order, to every Reader subscribed at the
// time of the push. A new Reader does not see values pushed before its
// subscription.
//
// The zero Queue is not usable; construct one with New.
type Queue[T any] struct {
	cfg *config

	mu sync.Mutex // serializes all structural mutation (the "producer lock")

	head *chunk[T]
	tail *chunk[T]
	// count is the current number of chunks in the list, maintained
	// incrementally under mu so ChunksCount is O(1).
	count int

	chunkIDCounter  uint64
	penultChunkSize int

	recycled *chunk[T] // single-slot recycled-chunk cache; nil if empty/disabled
	resizeTo int        // pending capacity override for the next allocation, 0 = none

	subscribers atomic.Int64 // relaxed: read opportunistically, not authoritative

	startPosMu spinlock
	startPos   cursor[T]
}

// New constructs a Queue with one initial chunk of WithMinChunkSize
// capacity (4, by default).
func New[T any](opts ...Option) (*Queue[T], error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	q := &Queue[T]{cfg: cfg}
	initial := newChunk[T](0, 0, cfg.minChunkSize)
	q.head = initial
	q.tail = initial
	q.count = 1
	q.startPos = cursor[T]{chunk: initial, index: 0}
	q.logger().Debugf("eventqueue: constructed queue min=%d max=%d", cfg.minChunkSize, cfg.maxChunkSize)
	q.updateChunksGauge()
	return q, nil
}

// Push appends v, serializing with every other producer call.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.tail.tryPush(v) {
		q.growAndPush(v)
	}
	if q.cfg.metrics != nil {
		q.cfg.metrics.pushed.Inc()
	}
}

// Extend appends every value of values, as if by Push, but holds the
// producer lock for the whole call: no other producer operation can
// interleave partway through.
func (q *Queue[T]) Extend(values ...T) {
	if len(values) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, v := range values {
		if !q.tail.tryPush(v) {
			q.growAndPush(v)
		}
	}
	if q.cfg.metrics != nil {
		q.cfg.metrics.pushed.Add(float64(len(values)))
	}
}

// growAndPush allocates (or recycles) a new tail chunk sized by the
// growth schedule, links it, and pushes v into it. Must be called with
// mu held and q.tail known to be full.
func (q *Queue[T]) growAndPush(v T) {
	capacity := q.nextCapacity()
	newTail := q.allocChunk(capacity)
	q.penultChunkSize = q.tail.capacity
	q.tail.next.Store(newTail)
	q.tail = newTail
	q.count++
	q.tail.pushUnchecked(v)
	q.updateChunksGauge()
}

// nextCapacity implements the bounded geometric growth schedule: two
// chunks at each size before doubling, capped at maxChunkSize. A pending
// resizeTo overrides it once.
func (q *Queue[T]) nextCapacity() int {
	if q.resizeTo > 0 {
		n := q.resizeTo
		q.resizeTo = 0
		q.recycled = nil // an explicit resize drops the recycled chunk
		return n
	}
	c := q.tail.capacity
	if q.penultChunkSize == c {
		next := c * 2
		if next > q.cfg.maxChunkSize {
			next = q.cfg.maxChunkSize
		}
		return next
	}
	return c
}

// allocChunk returns a chunk of at least the given capacity, reusing the
// recycled slot when double buffering is enabled and it fits.
func (q *Queue[T]) allocChunk(capacity int) *chunk[T] {
	q.chunkIDCounter++
	id := q.chunkIDCounter
	_, epoch := q.tail.state.load()

	if q.cfg.doubleBuffering && q.recycled != nil && q.recycled.capacity >= capacity {
		c := q.recycled
		q.recycled = nil
		c.reset(id, epoch)
		return c
	}
	return newChunk[T](id, epoch, capacity)
}

// Subscribe registers a new Reader positioned at the queue's current
// tail: it will not see any value pushed before this call returns.
func (q *Queue[T]) Subscribe() *Reader[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.subscribers.Add(1)
	_, epoch := q.tail.state.load()
	r := &Reader[T]{
		queue:       q,
		pos:         cursor[T]{chunk: q.head, index: 0},
		cachedEpoch: epoch,
	}
	target := cursor[T]{chunk: q.tail, index: q.tail.length()}
	// Cleanup is disabled here: Subscribe already holds mu, and
	// Queue.Cleanup would deadlock trying to reacquire it.
	r.setForwardPosition(target, false)
	return r
}

// Cleanup walks from head toward tail, reclaiming every chunk whose
// read-completion counter has caught up with the subscriber count.
func (q *Queue[T]) Cleanup() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cleanupLocked()
}

func (q *Queue[T]) cleanupLocked() {
	subs := q.subscribers.Load()
	for q.head != q.tail {
		next := q.head.next.Load()
		if next == nil || q.head.readCompletelyTimes.Load() != subs {
			break
		}
		q.reclaim(q.head)
		q.head = next
		q.count--
	}
	if q.head == q.tail {
		q.penultChunkSize = 0
	}
	q.updateChunksGauge()
}

// reclaim retires chunk c, either discarding it (left for GC) or keeping
// it as the recycled chunk if double buffering is enabled and c is
// bigger than whatever is already recycled.
func (q *Queue[T]) reclaim(c *chunk[T]) {
	if q.cfg.doubleBuffering && (q.recycled == nil || c.capacity > q.recycled.capacity) {
		q.recycled = c
	}
	q.logger().Debugf("eventqueue: reclaimed chunk id=%d capacity=%d", c.id, c.capacity)
	if q.cfg.metrics != nil {
		q.cfg.metrics.chunksReclaimed.Inc()
	}
}

// Clear discards all currently-buffered elements: it moves the start
// position to the current tail, so every reader that later catches up
// will skip straight past everything pushed so far.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setStartPositionLocked(cursor[T]{chunk: q.tail, index: q.tail.length()})
}

// TruncateFront discards chunks older than the k most recent ones,
// returning the number of chunks that become reclaimable. It is a no-op,
// returning 0, if fewer than k chunks separate head from the most recent
// allocation.
func (q *Queue[T]) TruncateFront(k int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	target := int64(q.chunkIDCounter) - int64(k) + 1
	if target <= int64(q.head.id) {
		return 0
	}

	c := q.head
	freed := 0
	for int64(c.id) < target {
		freed++
		next := c.next.Load()
		if next == nil {
			break
		}
		c = next
	}
	q.setStartPositionLocked(cursor[T]{chunk: c, index: 0})
	return freed
}

// setStartPositionLocked moves the start position and bumps the epoch on
// every chunk from head to the end of the list, so every reader notices
// on its next epoch check. Must be called with mu held.
func (q *Queue[T]) setStartPositionLocked(newPos cursor[T]) {
	q.startPosMu.Lock()
	q.startPos = newPos
	q.startPosMu.Unlock()

	_, headEpoch := q.head.state.load()
	newEpoch := headEpoch + 1
	for c := q.head; ; {
		c.state.setEpoch(newEpoch)
		next := c.next.Load()
		if next == nil {
			break
		}
		c = next
	}

	if q.cfg.autoCleanup == CleanupOnChunkRead && q.subscribers.Load() == 0 {
		q.cleanupLocked()
	}
}

// ChunksCount returns the current number of chunks in the list.
func (q *Queue[T]) ChunksCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Resize overrides the capacity of the next chunk allocation, bypassing
// the growth schedule once. It requires WithShrink.
func (q *Queue[T]) Resize(newCapacity int) {
	debugAssert(q.cfg.shrink, "queue.resize", "Resize requires WithShrink")
	if !q.cfg.shrink {
		return
	}
	debugAssert(newCapacity > 0, "queue.resize", "newCapacity must be positive")
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resizeTo = newCapacity
	q.recycled = nil
}

func (q *Queue[T]) updateChunksGauge() {
	if q.cfg.metrics != nil {
		q.cfg.metrics.chunksCount.Set(float64(q.count))
	}
}
