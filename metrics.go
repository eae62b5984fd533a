package tracelog

import "sync"

// FlusherMetrics is a snapshot of a flusher's counters.
type FlusherMetrics struct {
	// DrainedBytes is the total number of committed bytes written to
	// the output.
	DrainedBytes uint64
	// DrainCycles counts drains that found committed bytes.
	DrainCycles uint64
	// WriteErrors counts failed writes, including retried ones.
	WriteErrors uint64
	// Retried counts retry attempts after failed writes.
	Retried uint64
	// Dropped is the number of bytes lost after retries were exhausted.
	Dropped uint64
}

// FlusherMetricsHandler receives flusher metrics snapshots.
type FlusherMetricsHandler func(FlusherMetrics)

//nolint:gochecknoglobals // flusher metrics use a package-level registry for global handlers.
var flusherMetricsRegistryOnce = sync.OnceValue(func() *flusherMetricsHandlerRegistry {
	return &flusherMetricsHandlerRegistry{}
})

// RegisterFlusherMetricsHandler adds a global handler invoked when a
// flusher without its own MetricsReporter emits metrics.
func RegisterFlusherMetricsHandler(handler FlusherMetricsHandler) {
	if handler == nil {
		return
	}

	flusherMetricsRegistryOnce().register(handler)
}

// ClearFlusherMetricsHandlers removes all registered handlers.
func ClearFlusherMetricsHandlers() {
	flusherMetricsRegistryOnce().reset()
}

// EmitFlusherMetrics notifies global handlers with the provided snapshot.
func EmitFlusherMetrics(metrics FlusherMetrics) {
	flusherMetricsRegistryOnce().emit(metrics)
}

type flusherMetricsHandlerRegistry struct {
	mu       sync.RWMutex
	handlers []FlusherMetricsHandler
}

func (r *flusherMetricsHandlerRegistry) register(handler FlusherMetricsHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = append(r.handlers, handler)
}

func (r *flusherMetricsHandlerRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = nil
}

func (r *flusherMetricsHandlerRegistry) emit(metrics FlusherMetrics) {
	for _, handler := range r.snapshot() {
		handler(metrics)
	}
}

func (r *flusherMetricsHandlerRegistry) snapshot() []FlusherMetricsHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.handlers) == 0 {
		return nil
	}

	clone := make([]FlusherMetricsHandler, len(r.handlers))
	copy(clone, r.handlers)

	return clone
}
