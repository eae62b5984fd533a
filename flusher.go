package tracelog

import (
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/lintkit/tracelog/internal/bytequeue"
	"github.com/lintkit/tracelog/internal/constants"
)

// FlusherConfig configures a Flusher.
type FlusherConfig struct {
	// PollInterval is how often the drain goroutine checks the queue
	// for committed bytes.
	PollInterval time.Duration
	// FlushTimeout is the maximum time Flush waits for the drain
	// goroutine to confirm completion.
	FlushTimeout time.Duration
	// ErrorHandler is called when a write to the output fails.
	ErrorHandler func(error)
	// MetricsReporter receives periodic metrics about the flusher
	// state. When nil, metrics are emitted to the global handler
	// registry instead.
	MetricsReporter func(FlusherMetrics)
	// RetryEnabled enables retry attempts on write failures.
	RetryEnabled bool
	// MaxRetries defines the number of retry attempts after the initial write.
	MaxRetries int
	// RetryBackoff is the base backoff duration between retries.
	RetryBackoff time.Duration
	// RetryBackoffMultiplier scales the backoff after each retry.
	RetryBackoffMultiplier float64
	// RetryMaxBackoff caps the retry backoff duration.
	RetryMaxBackoff time.Duration
	// CloseOutput makes Close also close the output writer. Set when
	// the flusher's owner opened the output itself.
	CloseOutput bool
}

// Flusher is the consumer side of a trace stream: a background
// goroutine that drains committed bytes from the queue and writes them
// to an io.Writer. Draining copies the committed bytes out of the
// queue first, so the queue's commit lock is never held across I/O.
//
// The producer keeps writing and committing while the flusher runs;
// the two touch disjoint ends of the queue.
type Flusher struct {
	out        io.Writer
	queue      *bytequeue.Queue
	config     FlusherConfig
	stopCh     chan struct{}
	flushCh    chan chan struct{}
	wg         sync.WaitGroup
	closed     bool
	closeMutex sync.Mutex
	metricsMu  sync.Mutex

	// staging holds bytes copied out of the queue before they are
	// written. Reused across drain cycles; touched only by the drain
	// goroutine.
	staging []byte

	drainedBytes atomic.Uint64
	drainCycles  atomic.Uint64
	writeErrors  atomic.Uint64
	retryCount   atomic.Uint64
	dropped      atomic.Uint64
}

const defaultRetryBackoff = 10

// NewFlusher creates a Flusher draining queue into out and starts its
// background goroutine.
func NewFlusher(out io.Writer, queue *bytequeue.Queue, config FlusherConfig) *Flusher {
	if config.PollInterval <= 0 {
		config.PollInterval = constants.DefaultPollInterval
	}

	if config.FlushTimeout <= 0 {
		config.FlushTimeout = constants.DefaultFlushTimeout
	}

	if config.ErrorHandler == nil {
		config.ErrorHandler = func(error) {}
	}

	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	if config.RetryBackoff <= 0 {
		config.RetryBackoff = defaultRetryBackoff * time.Millisecond
	}

	if config.RetryBackoffMultiplier <= 1 {
		config.RetryBackoffMultiplier = 2
	}

	if config.RetryMaxBackoff <= 0 {
		config.RetryMaxBackoff = config.RetryBackoff * defaultRetryBackoff
	}

	flusher := &Flusher{
		out:     out,
		queue:   queue,
		config:  config,
		stopCh:  make(chan struct{}),
		flushCh: make(chan chan struct{}, 1),
	}

	flusher.start()

	return flusher
}

// Underlying returns the writer the flusher drains into.
func (f *Flusher) Underlying() io.Writer {
	return f.out
}

// Flush drains everything committed so far and waits until it has been
// written to the output, or until the flush timeout elapses.
func (f *Flusher) Flush() error {
	f.closeMutex.Lock()

	if f.closed {
		f.closeMutex.Unlock()

		return ErrFlusherClosed
	}

	f.closeMutex.Unlock()

	doneCh := make(chan struct{})

	select {
	case f.flushCh <- doneCh:
	case <-f.stopCh:
		return ErrFlusherClosed
	}

	select {
	case <-doneCh:
		return f.syncUnderlying()
	case <-time.After(f.config.FlushTimeout):
		return ErrFlushTimeout
	}
}

// Close stops the drain goroutine after one final drain, syncs the
// output, and closes it when CloseOutput is set and the output is an
// io.Closer other than a standard stream.
func (f *Flusher) Close() error {
	f.closeMutex.Lock()
	defer f.closeMutex.Unlock()

	if f.closed {
		return ErrFlusherClosed
	}

	f.closed = true

	close(f.stopCh)
	f.wg.Wait()

	err := f.syncUnderlying()
	if err != nil {
		return err
	}

	return f.closeUnderlying()
}

// Metrics returns a snapshot of the current counters.
func (f *Flusher) Metrics() FlusherMetrics {
	return FlusherMetrics{
		DrainedBytes: f.drainedBytes.Load(),
		DrainCycles:  f.drainCycles.Load(),
		WriteErrors:  f.writeErrors.Load(),
		Retried:      f.retryCount.Load(),
		Dropped:      f.dropped.Load(),
	}
}

func (f *Flusher) start() {
	f.wg.Add(1)

	go f.run()
}

// run is the drain goroutine: poll on a ticker, serve explicit flush
// requests, and drain one last time on stop.
func (f *Flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.drainOnce()
		case doneCh := <-f.flushCh:
			f.drainOnce()
			close(doneCh)
		case <-f.stopCh:
			f.drainOnce()

			return
		}
	}
}

// drainOnce copies all committed bytes out of the queue and writes
// them to the output.
func (f *Flusher) drainOnce() {
	f.staging = f.staging[:0]

	f.queue.TakeCommitted(func(span []byte) {
		f.staging = append(f.staging, span...)
	})

	if len(f.staging) == 0 {
		return
	}

	f.drainCycles.Add(1)

	err := f.performWrite(f.staging)
	if err != nil {
		// The bytes have already been taken from the queue; after
		// retries are exhausted they are lost. The stream stays
		// decodable up to the last fully-written event.
		f.dropped.Add(uint64(len(f.staging)))
		f.reportMetrics()

		return
	}

	f.drainedBytes.Add(uint64(len(f.staging)))
	f.reportMetrics()
}

func (f *Flusher) performWrite(data []byte) error {
	attempt := 0
	backoff := f.config.RetryBackoff

	for {
		_, err := f.out.Write(data)
		if err == nil {
			return nil
		}

		f.writeErrors.Add(1)
		f.config.ErrorHandler(err)

		if !f.config.RetryEnabled || attempt >= f.config.MaxRetries {
			return ewrap.Wrap(err, "writing trace bytes")
		}

		attempt++

		f.retryCount.Add(1)
		time.Sleep(backoff)
		backoff = time.Duration(math.Min(float64(f.config.RetryMaxBackoff), float64(backoff)*f.config.RetryBackoffMultiplier))
	}
}

func (f *Flusher) reportMetrics() {
	if reporter := f.config.MetricsReporter; reporter != nil {
		f.metricsMu.Lock()
		defer f.metricsMu.Unlock()

		reporter(f.Metrics())

		return
	}

	EmitFlusherMetrics(f.Metrics())
}

func (f *Flusher) syncUnderlying() error {
	if syncer, ok := f.out.(interface{ Sync() error }); ok {
		err := syncer.Sync()
		if err != nil {
			return ewrap.Wrap(err, "syncing trace output")
		}
	}

	return nil
}

func (f *Flusher) closeUnderlying() error {
	if !f.config.CloseOutput {
		return nil
	}

	closer, ok := f.out.(io.Closer)
	if !ok || isStandardStream(f.out) {
		return nil
	}

	err := closer.Close()
	if err != nil {
		return ewrap.Wrap(err, "closing trace output")
	}

	return nil
}
