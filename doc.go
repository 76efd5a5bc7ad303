// Package eventqueue implements an in-process, multi-producer /
// multi-consumer broadcast queue: every value pushed by a producer is
// delivered to every currently-subscribed [Reader], in FIFO order, exactly
// once per reader. Late subscribers do not receive back-history —
// [Queue.Subscribe] positions a new reader at the producer's current tail.
//
// # Architecture
//
// The queue is a singly-linked list of fixed-capacity chunks. Producers
// serialize on a single mutex; readers never take that mutex on their fast
// path. A chunk is reclaimed once every subscribed reader has crossed past
// it, tracked by a per-chunk read-completion counter compared against the
// live subscriber count. Chunk capacities grow on a bounded geometric
// schedule (two chunks at each size before doubling, capped at
// [WithMaxChunkSize]); see [Queue.Push].
//
// # Thread Safety
//
// [Queue] methods that mutate the chunk list ([Queue.Push], [Queue.Extend],
// [Queue.Subscribe], [Queue.Cleanup], [Queue.Clear], [Queue.TruncateFront],
// [Queue.Resize]) are safe for concurrent use by any number of goroutines;
// they serialize internally. [Reader.Read] and [Reader.UpdatePosition] are
// lock-free and safe for concurrent use with producers and with other
// readers, but a single [Reader] must not be driven by more than one
// goroutine at a time. [Reader.Close] must be called exactly once, when a
// reader is no longer needed (Go has no destructor to do this implicitly).
//
// # Configuration
//
// A [Queue] is configured at construction time via [Option] values passed
// to [New]: [WithMinChunkSize], [WithMaxChunkSize], [WithAutoCleanup],
// [WithDoubleBuffering], [WithShrink], [WithLogger], [WithMetrics].
package eventqueue
