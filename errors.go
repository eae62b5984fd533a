package tracelog

import (
	"github.com/hyp3rd/ewrap"
)

// Common errors for the tracelog package. Precondition violations
// (embedded NUL bytes, reservation size mismatches) are not errors:
// they indicate bugs and panic instead.
var (
	// ErrFlusherClosed is returned when operating on a closed flusher.
	ErrFlusherClosed = ewrap.New("flusher is closed")

	// ErrFlushTimeout is returned when a flush does not complete in time.
	ErrFlushTimeout = ewrap.New("flush timed out")

	// ErrTerminalOutput is returned when the trace output resolves to a
	// terminal. The stream is binary and never written to a TTY.
	ErrTerminalOutput = ewrap.New("refusing to write binary trace stream to a terminal")

	// ErrNoOutput is returned when the configuration names no output
	// destination.
	ErrNoOutput = ewrap.New("trace output destination is required")

	// ErrInvalidChunkSize is returned when the configured queue chunk
	// size is too small to hold a scalar reservation.
	ErrInvalidChunkSize = ewrap.New("chunk size is too small")
)
