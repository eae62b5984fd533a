// Package wire implements fixed-width little-endian integer emission
// into caller-supplied byte regions. It is the single place where the
// trace stream's byte order is encoded.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Writer emits unsigned integers of fixed width into a byte region of
// known length. The region must be filled exactly: callers compute the
// record size up front, and Finish panics on a size mismatch. A
// mismatch is a programming error, never a runtime condition.
type Writer struct {
	buf    []byte
	cursor int
}

// NewWriter returns a Writer over buf. The caller retains ownership of
// buf; the Writer only advances a cursor into it.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// U8 emits a single byte.
func (w *Writer) U8(v uint8) {
	if w.cursor+1 > len(w.buf) {
		panic(fmt.Sprintf("wire: u8 write overruns %d-byte region at offset %d", len(w.buf), w.cursor))
	}

	w.buf[w.cursor] = v
	w.cursor++
}

// U64LE emits eight bytes, least significant first, regardless of host
// byte order.
func (w *Writer) U64LE(v uint64) {
	if w.cursor+8 > len(w.buf) {
		panic(fmt.Sprintf("wire: u64 write overruns %d-byte region at offset %d", len(w.buf), w.cursor))
	}

	binary.LittleEndian.PutUint64(w.buf[w.cursor:], v)
	w.cursor += 8
}

// Written returns the number of bytes emitted so far.
func (w *Writer) Written() int {
	return w.cursor
}

// Finish asserts that the region was filled exactly. Callers that
// reserve a region of size N must emit exactly N bytes before the
// reservation is published.
func (w *Writer) Finish() {
	if w.cursor != len(w.buf) {
		panic(fmt.Sprintf("wire: region of %d bytes filled with %d", len(w.buf), w.cursor))
	}
}
