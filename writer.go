package tracelog

import (
	"fmt"
	"strings"

	"github.com/lintkit/tracelog/internal/bytequeue"
	"github.com/lintkit/tracelog/internal/wire"
)

// streamHeader is the fixed prologue of every trace stream: the CTF
// magic followed by the 16-byte metadata UUID. The UUID is defined by
// this literal byte pattern only; it is not a structured integer.
var streamHeader = []byte{
	0xC1, 0x1F, 0xFC, 0xC1,

	0x71, 0x75, 0x69, 0x63, 0x6B, 0x2D, 0x5F, 0x49,
	0x3E, 0xB9, 0x6C, 0x69, 0x6E, 0x74, 0x6A, 0x73,
}

// eventHeaderSize is the byte size of the per-event prefix: timestamp
// u64 plus event id u8.
const eventHeaderSize = 8 + 1

// Writer encodes typed trace events into an async byte queue. Every
// record is partitioned into scalar runs, emitted through an
// exact-size reservation filled by a wire.Writer, and opaque byte
// spans, copied directly. The writer borrows the queue; it owns no
// state beyond that borrow, so multiple writers may share a queue if
// higher layers serialize access.
//
// Writer operations never fail. Precondition violations (a NUL byte
// inside a nul-terminated string) panic.
type Writer struct {
	out *bytequeue.Queue
}

// NewWriter creates a Writer that appends to out.
func NewWriter(out *bytequeue.Queue) *Writer {
	return &Writer{out: out}
}

// Commit publishes everything written so far to the queue's consumer.
func (w *Writer) Commit() {
	w.out.Commit()
}

// WriteHeader emits the one-time stream prologue: magic, metadata
// UUID, thread id, and the compression mode byte. It must be the first
// write on a fresh queue.
func (w *Writer) WriteHeader(context Context) {
	w.out.AppendCopy(streamHeader)

	w.out.AppendWithWriter(8+1, func(bw *wire.Writer) {
		bw.U64LE(context.ThreadID)
		bw.U8(0x00) // compression mode
	})
}

// WriteEvent dispatches event to its typed write method. This is the
// single routing site from variant to wire encoding.
func (w *Writer) WriteEvent(header EventHeader, event Event) {
	switch e := event.(type) {
	case EventInit:
		w.WriteEventInit(header, e)
	case EventLSPClientToServerMessage:
		w.WriteEventLSPClientToServerMessage(header, e)
	case EventVectorMaxSizeHistogramByOwner:
		w.WriteEventVectorMaxSizeHistogramByOwner(header, e)
	case EventProcessID:
		w.WriteEventProcessID(header, e)
	case EventLSPDocuments:
		w.WriteEventLSPDocuments(header, e)
	default:
		panic(fmt.Sprintf("tracelog: unknown event type %T", event))
	}
}

// WriteEventInit emits the version announcement event.
func (w *Writer) WriteEventInit(header EventHeader, event EventInit) {
	w.out.AppendWithWriter(eventHeaderSize, func(bw *wire.Writer) {
		bw.U64LE(header.Timestamp)
		bw.U8(event.ID)
	})
	w.writeNulTerminatedString(event.Version, "init version")
}

// WriteEventLSPClientToServerMessage emits one raw client-to-server
// LSP message.
func (w *Writer) WriteEventLSPClientToServerMessage(header EventHeader, event EventLSPClientToServerMessage) {
	w.out.AppendWithWriter(eventHeaderSize+8, func(bw *wire.Writer) {
		bw.U64LE(header.Timestamp)
		bw.U8(event.ID)
		bw.U64LE(uint64(len(event.Body)))
	})
	w.out.AppendCopy(event.Body)
}

// WriteEventVectorMaxSizeHistogramByOwner emits per-owner vector
// max-size histograms.
func (w *Writer) WriteEventVectorMaxSizeHistogramByOwner(header EventHeader, event EventVectorMaxSizeHistogramByOwner) {
	w.out.AppendWithWriter(eventHeaderSize+8, func(bw *wire.Writer) {
		bw.U64LE(header.Timestamp)
		bw.U8(event.ID)
		bw.U64LE(uint64(len(event.Entries)))
	})

	for _, entry := range event.Entries {
		w.writeNulTerminatedString(entry.Owner, "histogram owner")

		buckets := entry.Buckets
		w.out.AppendWithWriter(8+(8+8)*len(buckets), func(bw *wire.Writer) {
			bw.U64LE(uint64(len(buckets)))

			for _, bucket := range buckets {
				bw.U64LE(bucket.MaxSize)
				bw.U64LE(bucket.Count)
			}
		})
	}
}

// WriteEventProcessID emits the producer's process id.
func (w *Writer) WriteEventProcessID(header EventHeader, event EventProcessID) {
	w.out.AppendWithWriter(eventHeaderSize+8, func(bw *wire.Writer) {
		bw.U64LE(header.Timestamp)
		bw.U8(event.ID)
		bw.U64LE(event.ProcessID)
	})
}

// WriteEventLSPDocuments emits a snapshot of all open LSP documents.
func (w *Writer) WriteEventLSPDocuments(header EventHeader, event EventLSPDocuments) {
	w.out.AppendWithWriter(eventHeaderSize+8, func(bw *wire.Writer) {
		bw.U64LE(header.Timestamp)
		bw.U8(event.ID)
		bw.U64LE(uint64(len(event.Documents)))
	})

	for _, doc := range event.Documents {
		w.out.AppendWithWriter(1, func(bw *wire.Writer) {
			bw.U8(uint8(doc.Type))
		})
		w.writeUTF8String(doc.URI)
		w.writeUTF8String(doc.Text)
		w.writeUTF8String(doc.LanguageID)
	}
}

// writeUTF8String emits a length-prefixed string: u64 LE byte length,
// then the raw bytes with no terminator. Embedded NUL bytes are fine.
func (w *Writer) writeUTF8String(s string) {
	w.out.AppendWithWriter(8, func(bw *wire.Writer) {
		bw.U64LE(uint64(len(s)))
	})
	w.out.AppendCopy([]byte(s))
}

// writeNulTerminatedString emits the raw bytes followed by one 0x00.
// An embedded NUL would corrupt the stream for every later record, so
// it panics.
func (w *Writer) writeNulTerminatedString(s string, what string) {
	if strings.IndexByte(s, 0x00) >= 0 {
		panic(fmt.Sprintf("tracelog: %s contains a NUL byte", what))
	}

	w.out.AppendCopy([]byte(s))
	w.out.AppendByte(0x00)
}
