package eventqueue

import "github.com/joeycumines/logiface"

// Logger is this package's own, minimal logging dependency. It is
// satisfied by LogifaceLogger, which adapts any *logiface.Logger[E] —
// for example github.com/joeycumines/izerolog's *izerolog.Event backend —
// without forcing Queue to be generic over a second, unrelated type
// parameter just to carry a log event type.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// LogifaceLogger adapts a *logiface.Logger[E] to Logger, for any concrete
// logiface event implementation E.
type LogifaceLogger[E logiface.Event] struct {
	L *logiface.Logger[E]
}

func (l LogifaceLogger[E]) Debugf(format string, args ...any) {
	l.L.Debug().Logf(format, args...)
}

func (l LogifaceLogger[E]) Infof(format string, args ...any) {
	l.L.Info().Logf(format, args...)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}

func (q *Queue[T]) logger() Logger {
	if q.cfg.logger != nil {
		return q.cfg.logger
	}
	return noopLogger{}
}
