package eventqueue

import "golang.org/x/exp/constraints"

// cursor is a (chunk, in-chunk index) pair. Cursors are totally ordered
// by (chunk.id, index); the referenced chunk is always kept alive by
// whoever holds the cursor (a Reader, the queue's start position, or the
// list head/tail) — in this implementation, simply by being an ordinary
// Go pointer the garbage collector can see.
type cursor[T any] struct {
	chunk *chunk[T]
	index int
}

// compareOrdered returns -1, 0, or 1 as a orders before, at, or after b.
// It is shared by cursor.compare's two fields (chunk.id is uint64, index
// is int), which is the only place this package needs ordering beyond
// comparable.
func compareOrdered[N constraints.Integer](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compare returns -1, 0, or 1 as a orders before, at, or after b.
func (a cursor[T]) compare(b cursor[T]) int {
	if c := compareOrdered(a.chunk.id, b.chunk.id); c != 0 {
		return c
	}
	return compareOrdered(a.index, b.index)
}
