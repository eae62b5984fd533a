// Package bytequeue implements an unbounded append-only byte queue for
// a single producer and a single consumer. The producer appends bytes
// and periodically commits; the consumer drains committed bytes in
// order. Bytes written after the last commit are in flight and never
// observable by the consumer.
package bytequeue

import (
	"fmt"
	"sync"

	"github.com/lintkit/tracelog/internal/constants"
	"github.com/lintkit/tracelog/internal/wire"
)

// chunk is one contiguous region of queue storage. Chunks form a
// singly-linked list; earlier chunks drain and recycle while later
// chunks keep accepting writes.
type chunk struct {
	data []byte
	// begin is the index of the first byte the consumer has not taken.
	begin int
	// end is the index one past the last byte the producer has written.
	// Only the producer mutates it; the consumer reads it only for
	// chunks before the commit chunk, which the producer has left.
	end  int
	next *chunk
}

func (c *chunk) capacity() int {
	return len(c.data)
}

// Queue is a chunked single-producer single-consumer byte queue.
//
// The producer calls AppendCopy, AppendByte, AppendWithWriter, and
// Commit from one goroutine. The consumer calls TakeCommitted from one
// (possibly different) goroutine. The mutex guards the commit boundary,
// the chunk links, and the freelist; appends into the current chunk's
// tail take no lock.
type Queue struct {
	chunkSize int

	// tail is the chunk currently accepting writes. Producer-only.
	tail *chunk

	mu sync.Mutex
	// head is the oldest chunk the consumer has not fully drained.
	head *chunk
	// commitChunk and commitEnd mark the publication boundary: the
	// consumer may read up to commitEnd within commitChunk and the
	// whole written extent of every earlier chunk.
	commitChunk *chunk
	commitEnd   int
	freelist    *chunk
}

// NewQueue creates a queue whose chunks hold chunkSize bytes each.
// A non-positive chunkSize selects the default.
func NewQueue(chunkSize int) *Queue {
	if chunkSize <= 0 {
		chunkSize = constants.DefaultChunkSize
	}

	first := &chunk{data: make([]byte, chunkSize)}

	return &Queue{
		chunkSize: chunkSize,
		tail:      first,
		head:      first,
	}
}

// AppendCopy copies data into the queue, splitting across chunk
// boundaries as needed.
func (q *Queue) AppendCopy(data []byte) {
	for len(data) > 0 {
		free := q.tail.capacity() - q.tail.end
		if free == 0 {
			q.grow(q.chunkSize)

			free = q.tail.capacity()
		}

		n := len(data)
		if n > free {
			n = free
		}

		copy(q.tail.data[q.tail.end:], data[:n])
		q.tail.end += n
		data = data[n:]
	}
}

// AppendByte appends a single byte.
func (q *Queue) AppendByte(b byte) {
	if q.tail.capacity()-q.tail.end == 0 {
		q.grow(q.chunkSize)
	}

	q.tail.data[q.tail.end] = b
	q.tail.end++
}

// AppendWithWriter reserves a contiguous region of exactly size bytes,
// hands it to fill through a wire.Writer, then publishes the region at
// the producer end of the queue. fill must write exactly size bytes;
// anything else is a programming error and panics.
func (q *Queue) AppendWithWriter(size int, fill func(*wire.Writer)) {
	if size < 0 {
		panic(fmt.Sprintf("bytequeue: negative reservation %d", size))
	}

	if q.tail.capacity()-q.tail.end < size {
		grown := q.chunkSize
		if size > grown {
			grown = size
		}

		q.grow(grown)
	}

	writer := wire.NewWriter(q.tail.data[q.tail.end : q.tail.end+size])
	fill(writer)
	writer.Finish()

	q.tail.end += size
}

// Commit publishes every byte written so far to the consumer. Bytes
// appended after this call stay invisible until the next Commit.
func (q *Queue) Commit() {
	q.mu.Lock()
	q.commitChunk = q.tail
	q.commitEnd = q.tail.end
	q.mu.Unlock()
}

// TakeCommitted hands the consumer all committed, not-yet-taken bytes
// as one or more contiguous spans in producer order. The spans are
// only valid for the duration of the call; sink must copy anything it
// keeps. If nothing is committed, sink is never called.
//
// The queue's lock is held while sink runs, so sink should be quick —
// typically an in-memory copy, with real I/O done elsewhere.
func (q *Queue) TakeCommitted(sink func([]byte)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.commitChunk == nil {
		return
	}

	for {
		current := q.head

		upTo := q.commitEnd
		if current != q.commitChunk {
			upTo = current.end
		}

		if upTo > current.begin {
			sink(current.data[current.begin:upTo])
			current.begin = upTo
		}

		if current == q.commitChunk {
			return
		}

		// current is fully drained and the producer has moved past it;
		// recycle it.
		q.head = current.next
		q.recycle(current)
	}
}

// TakeCommittedBytes drains like TakeCommitted but returns the bytes
// as a single slice. Intended for tests and small drains.
func (q *Queue) TakeCommittedBytes() []byte {
	var out []byte

	q.TakeCommitted(func(span []byte) {
		out = append(out, span...)
	})

	return out
}

// grow links a fresh chunk of at least minSize bytes after the current
// tail and makes it the write target. Freelist chunks are reused when
// large enough.
func (q *Queue) grow(minSize int) {
	q.mu.Lock()

	var next *chunk

	if q.freelist != nil && q.freelist.capacity() >= minSize {
		next = q.freelist
		q.freelist = next.next
		next.next = nil
		next.begin = 0
		next.end = 0
	}

	if next == nil {
		next = &chunk{data: make([]byte, minSize)}
	}

	q.tail.next = next
	q.tail = next
	q.mu.Unlock()
}

// recycle returns a drained chunk to the freelist. Caller holds q.mu.
func (q *Queue) recycle(c *chunk) {
	c.next = q.freelist
	c.begin = 0
	c.end = 0
	q.freelist = c
}
