package eventqueue

import (
	"fmt"

	"github.com/tower120/lockless-event-queue/internal/tag"
)

// assertion is the one error/panic type this package raises. Option
// validation at construction time returns it as an ordinary error;
// precondition violations detected on the hot path (gated by
// internal/tag.Debug) panic with it.
type assertion struct {
	Invariant string
	Message   string
	Cause     error
}

func (e *assertion) Error() string {
	if e.Invariant == "" {
		return "eventqueue: " + e.Message
	}
	return fmt.Sprintf("eventqueue: %s: %s", e.Invariant, e.Message)
}

func (e *assertion) Unwrap() error { return e.Cause }

// debugAssert panics with an *assertion if tag.Debug is enabled and cond
// is false. It is a no-op in non-debug builds, matching the source's own
// debug-only assertion behavior.
func debugAssert(cond bool, invariant, message string) {
	if tag.Debug && !cond {
		panic(&assertion{Invariant: invariant, Message: message})
	}
}
