// Package tracelog emits a binary stream of structured diagnostic
// events for a JavaScript/TypeScript linter: process identity, raw LSP
// message traffic, snapshots of open LSP documents, and internal
// vector-size telemetry.
//
// The stream is an append-only sequence of records behind a fixed
// 29-byte prologue. Events are produced on one goroutine through a
// Writer, buffered in an unbounded chunked byte queue, published with
// Commit, and drained by a background Flusher to a file or any
// io.Writer. A Session wires the three together:
//
//	config, err := tracelog.NewConfigBuilder().
//		WithFileOutput("trace/thread-1.bin").
//		WithThreadID(1).
//		Build()
//	if err != nil { ... }
//
//	session, err := tracelog.NewSession(config)
//	if err != nil { ... }
//	defer session.Close()
//
//	w := session.Writer()
//	w.WriteEventInit(tracelog.EventHeader{Timestamp: now()},
//		tracelog.EventInit{ID: tracelog.EventIDInit, Version: version})
//	session.Commit()
//
// Writer operations never block and never fail; contract violations
// such as a NUL byte inside a nul-terminated field panic, because they
// would corrupt the stream for every later record.
package tracelog
