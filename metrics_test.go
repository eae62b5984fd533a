package tracelog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lintkit/tracelog/internal/bytequeue"
)

func TestRegisterFlusherMetricsHandler(t *testing.T) {
	t.Cleanup(ClearFlusherMetricsHandlers)

	var (
		mu       sync.Mutex
		received []FlusherMetrics
	)

	RegisterFlusherMetricsHandler(func(m FlusherMetrics) {
		mu.Lock()
		received = append(received, m)
		mu.Unlock()
	})

	EmitFlusherMetrics(FlusherMetrics{DrainedBytes: 10})

	mu.Lock()
	require.Len(t, received, 1)
	assert.Equal(t, uint64(10), received[0].DrainedBytes)
	mu.Unlock()
}

func TestRegisterNilHandlerIsIgnored(t *testing.T) {
	t.Cleanup(ClearFlusherMetricsHandlers)

	RegisterFlusherMetricsHandler(nil)

	// Emitting must not panic with a nil handler registered.
	EmitFlusherMetrics(FlusherMetrics{})
}

func TestClearFlusherMetricsHandlers(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)

	RegisterFlusherMetricsHandler(func(FlusherMetrics) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	ClearFlusherMetricsHandlers()

	EmitFlusherMetrics(FlusherMetrics{})

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestFlusherWithoutReporterEmitsGlobally(t *testing.T) {
	t.Cleanup(ClearFlusherMetricsHandlers)

	var (
		mu   sync.Mutex
		last FlusherMetrics
		seen bool
	)

	RegisterFlusherMetricsHandler(func(m FlusherMetrics) {
		mu.Lock()
		last = m
		seen = true
		mu.Unlock()
	})

	queue := bytequeue.NewQueue(0)
	flusher := NewFlusher(&mockWriter{}, queue, FlusherConfig{PollInterval: time.Hour})

	defer flusher.Close()

	queue.AppendCopy([]byte("xyz"))
	queue.Commit()

	require.NoError(t, flusher.Flush())

	mu.Lock()
	defer mu.Unlock()
	require.True(t, seen)
	assert.Equal(t, uint64(3), last.DrainedBytes)
}
