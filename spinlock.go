package eventqueue

import (
	"runtime"
	"sync/atomic"
)

// spinlock is a CAS-based lock for critical sections too short to be
// worth an OS-level mutex round trip through the scheduler — here, a
// single cursor copy guarding Queue.startPos. Modelled on the spin/
// Gosched backoff used by this module's reference implementation's
// lock-free ring buffer.
type spinlock struct {
	locked atomic.Bool
}

func (s *spinlock) Lock() {
	for !s.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (s *spinlock) Unlock() {
	s.locked.Store(false)
}
