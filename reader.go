package eventqueue

// Reader is a subscribed consumer of a Queue. Its cursor and cached
// epoch are not safe for concurrent use by more than one goroutine at a
// time, but are safe to use concurrently with the Queue's producer side
// and with other Readers.
//
// Close must be called exactly once, when the Reader is no longer
// needed — typically via defer right after Subscribe. Go has no
// destructor to do this automatically.
type Reader[T any] struct {
	queue       *Queue[T]
	pos         cursor[T]
	cachedEpoch uint32
	closed      bool
}

// refreshLen returns the current chunk's reader-visible length, first
// synchronizing with the queue's start position if the chunk's epoch has
// moved since this Reader last checked.
func (r *Reader[T]) refreshLen() int {
	length, epoch := r.pos.chunk.state.load()
	if epoch != r.cachedEpoch {
		r.cachedEpoch = epoch
		r.synchronizeWithStartPosition()
		length = r.pos.chunk.length()
	}
	return length
}

// synchronizeWithStartPosition is the slow path taken whenever an epoch
// bump is observed: it copies the queue's start position under the spin
// lock and, if that position is ahead of this reader, fast-forwards.
func (r *Reader[T]) synchronizeWithStartPosition() {
	q := r.queue
	q.startPosMu.Lock()
	target := q.startPos
	q.startPosMu.Unlock()

	if target.compare(r.pos) > 0 {
		r.setForwardPosition(target, q.cfg.autoCleanup == CleanupOnChunkRead)
	}
}

// setForwardPosition advances the reader's cursor to target, which must
// not precede the current cursor. Every chunk strictly before
// target.chunk has its read-completion counter incremented, since this
// reader is leaving it behind for good.
func (r *Reader[T]) setForwardPosition(target cursor[T], tryCleanup bool) {
	debugAssert(target.compare(r.pos) >= 0, "reader.forward", "target cursor precedes current cursor")

	subs := r.queue.subscribers.Load()
	triggerCleanup := false
	for c := r.pos.chunk; c != target.chunk; {
		// next must be loaded before the chunk's counter is touched:
		// once every subscriber has crossed it, it may be reclaimed
		// (and, with nothing left pointing at it, collected).
		next := c.next.Load()
		if newVal := c.readCompletelyTimes.Add(1); newVal >= subs {
			triggerCleanup = true
		}
		c = next
	}
	r.pos = target

	if tryCleanup && triggerCleanup {
		r.queue.Cleanup()
	}
}

// Read walks every element this Reader has not yet seen, in order,
// invoking fn with each by value. fn should return true to continue or
// false to stop early. Read is lock-free: it never blocks and never
// takes the queue's producer lock itself (Queue.Cleanup, triggered only
// when WithAutoCleanup(CleanupOnChunkRead) is set, is the sole exception:
// it can run when Read catches up to a moved start position before the
// walk, and after the walk finishes).
func (r *Reader[T]) Read(fn func(T) bool) {
	debugAssert(!r.closed, "reader.read", "Read called after Close")

	chunkLen := r.refreshLen()
	pos := r.pos

	defer func() {
		r.setForwardPosition(pos, r.queue.cfg.autoCleanup == CleanupOnChunkRead)
	}()

	for {
		if pos.index < chunkLen {
			v := pos.chunk.slots[pos.index]
			pos.index++
			if !fn(v) {
				return
			}
			continue
		}

		next := pos.chunk.next.Load()
		if next == nil {
			return // no successor yet: end of stream
		}
		sealedLen, _ := pos.chunk.state.load()
		if sealedLen != chunkLen {
			// the chunk kept growing since we last looked: not actually
			// exhausted, re-read its length on the next iteration.
			chunkLen = sealedLen
			continue
		}
		nextLen := next.length()
		if nextLen == 0 {
			return // producer linked the chunk but hasn't pushed into it yet
		}
		pos = cursor[T]{chunk: next, index: 0}
		chunkLen = nextLen
	}
}

// UpdatePosition forces the reader up to the queue's start position if it
// is lagging, without consuming any element. Unlike Read, it never enters
// the data-delivery loop, so it cannot skip past queued-but-unread
// elements that are merely backlogged (as opposed to truncated away by a
// Clear/TruncateFront epoch bump).
func (r *Reader[T]) UpdatePosition() {
	debugAssert(!r.closed, "reader.read", "UpdatePosition called after Close")
	r.refreshLen()
}

// Close unsubscribes the reader. It must be called exactly once.
func (r *Reader[T]) Close() {
	debugAssert(!r.closed, "reader.close", "Close called twice")
	if r.closed {
		return
	}
	r.closed = true

	q := r.queue
	q.mu.Lock()
	defer q.mu.Unlock()

	for c := q.head; c != r.pos.chunk; {
		next := c.next.Load()
		remaining := c.readCompletelyTimes.Add(-1)
		debugAssert(remaining >= 0, "chunk.read_completely_times", "read-completion counter went negative")
		c = next
	}
	q.subscribers.Add(-1)
}
