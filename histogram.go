package tracelog

import (
	"sort"
	"sync"
)

// VectorMaxSizeHistogram collects peak-size observations for internal
// vectors, grouped by the code site that owns them. It is the
// in-process source for the vector max-size histogram event: linter
// containers report their high-water mark on destruction, and the
// collected histogram is periodically written to the trace stream.
//
// All methods are safe for concurrent use; many linter threads sample
// into one collector.
type VectorMaxSizeHistogram struct {
	mu      sync.Mutex
	byOwner map[string]map[uint64]uint64
}

// NewVectorMaxSizeHistogram creates an empty collector.
func NewVectorMaxSizeHistogram() *VectorMaxSizeHistogram {
	return &VectorMaxSizeHistogram{
		byOwner: make(map[string]map[uint64]uint64),
	}
}

// Sample records that a vector owned by owner peaked at maxSize
// elements during its lifetime.
func (h *VectorMaxSizeHistogram) Sample(owner string, maxSize uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buckets := h.byOwner[owner]
	if buckets == nil {
		buckets = make(map[uint64]uint64)
		h.byOwner[owner] = buckets
	}

	buckets[maxSize]++
}

// Entries returns the collected histograms as event entries, owners
// and buckets sorted ascending so the emitted stream is deterministic.
func (h *VectorMaxSizeHistogram) Entries() []HistogramEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.byOwner) == 0 {
		return nil
	}

	owners := make([]string, 0, len(h.byOwner))
	for owner := range h.byOwner {
		owners = append(owners, owner)
	}

	sort.Strings(owners)

	entries := make([]HistogramEntry, 0, len(owners))

	for _, owner := range owners {
		buckets := h.byOwner[owner]

		sizes := make([]uint64, 0, len(buckets))
		for size := range buckets {
			sizes = append(sizes, size)
		}

		sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

		entry := HistogramEntry{
			Owner:   owner,
			Buckets: make([]HistogramBucket, 0, len(sizes)),
		}
		for _, size := range sizes {
			entry.Buckets = append(entry.Buckets, HistogramBucket{MaxSize: size, Count: buckets[size]})
		}

		entries = append(entries, entry)
	}

	return entries
}

// Reset discards all collected samples.
func (h *VectorMaxSizeHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byOwner = make(map[string]map[uint64]uint64)
}
