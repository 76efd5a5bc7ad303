package eventqueue_test

import (
	"bytes"
	"testing"

	"github.com/joeycumines/izerolog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	eventqueue "github.com/tower120/lockless-event-queue"
)

func TestLogifaceLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.DebugLevel)
	logger := izerolog.L.New(izerolog.L.WithZerolog(base))

	adapter := eventqueue.LogifaceLogger[*izerolog.Event]{L: logger}

	q, err := eventqueue.New[int](
		eventqueue.WithMinChunkSize(2),
		eventqueue.WithMaxChunkSize(2),
		eventqueue.WithDoubleBuffering(),
		eventqueue.WithLogger(adapter),
	)
	require.NoError(t, err)

	r := q.Subscribe()
	for i := 1; i <= 4; i++ {
		q.Push(i)
	}
	r.Read(func(int) bool { return true })
	q.Cleanup()
	r.Close()

	require.Contains(t, buf.String(), "reclaimed chunk")
}
