package tracelog

import (
	"io"
	"sync"

	"github.com/lintkit/tracelog/internal/bytequeue"
)

// Session ties a trace stream together: it owns the byte queue, writes
// the stream header, hands out the event writer, and runs the flusher
// that delivers committed bytes to the configured output.
//
// The caller's event-producing goroutine uses Writer and Commit; the
// flusher drains on its own goroutine. Shutdown is cooperative: Close
// performs a final commit, drains the queue, and releases the output.
type Session struct {
	queue     *bytequeue.Queue
	writer    *Writer
	flusher   *Flusher
	closeOnce sync.Once
	closeErr  error
}

// NewSession validates config, resolves the output, writes the stream
// header, and starts the flusher. A disabled config yields a working
// session whose bytes go to io.Discard, so callers never need to
// nil-check before writing events.
func NewSession(config *Config) (*Session, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	var (
		out     io.Writer
		ownsOut bool
	)

	if config.Enabled {
		out, ownsOut, err = resolveOutput(config)
		if err != nil {
			return nil, err
		}
	} else {
		out = io.Discard
	}

	queue := bytequeue.NewQueue(config.ChunkSize)
	writer := NewWriter(queue)

	writer.WriteHeader(Context{ThreadID: config.ThreadID})
	writer.Commit()

	flusherConfig := config.flusherConfig()
	flusherConfig.CloseOutput = ownsOut

	session := &Session{
		queue:   queue,
		writer:  writer,
		flusher: NewFlusher(out, queue, flusherConfig),
	}

	return session, nil
}

// Writer returns the event writer for this stream.
func (s *Session) Writer() *Writer {
	return s.writer
}

// Commit publishes all events written so far to the flusher.
func (s *Session) Commit() {
	s.writer.Commit()
}

// WriteHistogram snapshots the collector and writes its entries as a
// vector max-size histogram event. Empty collectors still produce an
// event with zero entries, which keeps periodic emission uniform.
func (s *Session) WriteHistogram(timestamp uint64, histogram *VectorMaxSizeHistogram) {
	s.writer.WriteEventVectorMaxSizeHistogramByOwner(
		EventHeader{Timestamp: timestamp},
		EventVectorMaxSizeHistogramByOwner{
			ID:      EventIDVectorMaxSizeHistogramByOwner,
			Entries: histogram.Entries(),
		})
	s.writer.Commit()
}

// Flush commits and waits until every committed byte has reached the
// output.
func (s *Session) Flush() error {
	s.writer.Commit()

	return s.flusher.Flush()
}

// Metrics returns the flusher's counters.
func (s *Session) Metrics() FlusherMetrics {
	return s.flusher.Metrics()
}

// Close commits outstanding writes, drains the queue, and closes the
// output if the session opened it. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.writer.Commit()
		s.closeErr = s.flusher.Close()
	})

	return s.closeErr
}

// Output returns the resolved output writer, mainly for tests and
// diagnostics.
func (s *Session) Output() io.Writer {
	return s.flusher.Underlying()
}
