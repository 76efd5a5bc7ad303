package eventqueue

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Drain is a blocking convenience layered on top of the lock-free core:
// it repeatedly calls r.Read under a short exponential backoff until fn
// returns false or ctx is cancelled. The core Read/UpdatePosition methods
// themselves never block; Drain exists for callers who want a simple
// await-next-batch loop without hand-rolling the poll.
func Drain[T any](ctx context.Context, r *Reader[T], fn func(T) bool) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		const maxBackoff = 50 * time.Millisecond
		backoff := time.Millisecond

		for {
			stopped := false
			progressed := false
			r.Read(func(v T) bool {
				progressed = true
				if !fn(v) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return nil
			}

			if progressed {
				backoff = time.Millisecond
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
		}
	})
	return g.Wait()
}
