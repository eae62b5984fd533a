package tracelog

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is an io.Writer safe to share between the flusher
// goroutine and test assertions.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())

	return out
}

func streamPrologue(threadID uint64) []byte {
	out := append([]byte{}, streamHeader...)
	for shift := 0; shift < 64; shift += 8 {
		out = append(out, byte(threadID>>shift))
	}

	return append(out, 0x00)
}

func newSessionConfig(t *testing.T, out *syncBuffer) *Config {
	t.Helper()

	config, err := NewConfigBuilder().
		WithOutput(out).
		WithThreadID(0x0102030405060708).
		WithPollInterval(time.Hour).
		Build()
	require.NoError(t, err)

	return config
}

func TestSessionWritesStreamHeader(t *testing.T) {
	out := &syncBuffer{}

	session, err := NewSession(newSessionConfig(t, out))
	require.NoError(t, err)

	require.NoError(t, session.Flush())

	assert.Equal(t, streamPrologue(0x0102030405060708), out.bytes())

	require.NoError(t, session.Close())
}

func TestSessionEndToEnd(t *testing.T) {
	out := &syncBuffer{}

	session, err := NewSession(newSessionConfig(t, out))
	require.NoError(t, err)

	writer := session.Writer()

	writer.WriteEventInit(EventHeader{Timestamp: 1},
		EventInit{ID: EventIDInit, Version: "3.0.0"})
	session.Commit()

	writer.WriteEventProcessID(EventHeader{Timestamp: 2},
		EventProcessID{ID: EventIDProcessID, ProcessID: 4242})
	session.Commit()

	require.NoError(t, session.Close())

	data := out.bytes()
	prologue := streamPrologue(0x0102030405060708)
	require.Greater(t, len(data), len(prologue))
	assert.Equal(t, prologue, data[:len(prologue)])

	decoded := decodeEvents(t, data[len(prologue):])
	require.Len(t, decoded, 2)
	assert.Equal(t, EventInit{ID: EventIDInit, Version: "3.0.0"}, decoded[0].event)
	assert.Equal(t, EventProcessID{ID: EventIDProcessID, ProcessID: 4242}, decoded[1].event)
}

func TestSessionProducerAndFlusherThreads(t *testing.T) {
	out := &syncBuffer{}

	config := newSessionConfig(t, out)
	config.PollInterval = time.Millisecond

	session, err := NewSession(config)
	require.NoError(t, err)

	const events = 200

	writer := session.Writer()

	for i := range events {
		writer.WriteEventProcessID(EventHeader{Timestamp: uint64(i)},
			EventProcessID{ID: EventIDProcessID, ProcessID: uint64(i)})
		session.Commit()
	}

	require.NoError(t, session.Close())

	prologue := streamPrologue(0x0102030405060708)
	data := out.bytes()
	require.Greater(t, len(data), len(prologue))

	decoded := decodeEvents(t, data[len(prologue):])
	require.Len(t, decoded, events)

	for i, entry := range decoded {
		assert.Equal(t, uint64(i), entry.header.Timestamp)
		assert.Equal(t, EventProcessID{ID: EventIDProcessID, ProcessID: uint64(i)}, entry.event)
	}
}

func TestSessionWriteHistogram(t *testing.T) {
	out := &syncBuffer{}

	session, err := NewSession(newSessionConfig(t, out))
	require.NoError(t, err)

	histogram := NewVectorMaxSizeHistogram()
	histogram.Sample("parser", 3)
	histogram.Sample("parser", 3)

	session.WriteHistogram(77, histogram)

	require.NoError(t, session.Close())

	prologue := streamPrologue(0x0102030405060708)
	decoded := decodeEvents(t, out.bytes()[len(prologue):])
	require.Len(t, decoded, 1)

	assert.Equal(t, EventHeader{Timestamp: 77}, decoded[0].header)
	assert.Equal(t, EventVectorMaxSizeHistogramByOwner{
		ID: EventIDVectorMaxSizeHistogramByOwner,
		Entries: []HistogramEntry{
			{Owner: "parser", Buckets: []HistogramBucket{{MaxSize: 3, Count: 2}}},
		},
	}, decoded[0].event)
}

func TestSessionDisabledDiscards(t *testing.T) {
	config, err := NewConfigBuilder().
		WithEnabled(false).
		Build()
	require.NoError(t, err)

	session, err := NewSession(config)
	require.NoError(t, err)
	require.NotNil(t, session)

	session.Writer().WriteEventProcessID(EventHeader{},
		EventProcessID{ID: EventIDProcessID, ProcessID: 1})
	session.Commit()

	require.NoError(t, session.Close())
}

func TestSessionFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "session.bin")

	config, err := NewConfigBuilder().
		WithFileOutput(path).
		WithThreadID(5).
		Build()
	require.NoError(t, err)

	session, err := NewSession(config)
	require.NoError(t, err)

	require.NoError(t, session.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, streamPrologue(5), data)
}

func TestSessionMetrics(t *testing.T) {
	out := &syncBuffer{}

	session, err := NewSession(newSessionConfig(t, out))
	require.NoError(t, err)

	require.NoError(t, session.Flush())

	metrics := session.Metrics()
	assert.EqualValues(t, len(streamPrologue(0)), metrics.DrainedBytes)

	require.NoError(t, session.Close())
}
