package tracelog

// Context carries immutable per-stream metadata, supplied once when
// the stream header is written.
type Context struct {
	// ThreadID identifies the producer thread of this stream.
	ThreadID uint64
}

// EventHeader is the prefix shared by every event record.
type EventHeader struct {
	// Timestamp is an opaque monotonic value supplied by the caller.
	// The writer does not interpret or order timestamps.
	Timestamp uint64
}

// Canonical event identities. Each event struct carries its ID
// explicitly and the writer emits it verbatim; the writer does not
// check it against these constants.
const (
	EventIDInit                          uint8 = 0x01
	EventIDLSPClientToServerMessage      uint8 = 0x02
	EventIDProcessID                     uint8 = 0x03
	EventIDVectorMaxSizeHistogramByOwner uint8 = 0x04
	EventIDLSPDocuments                  uint8 = 0x05
)

// Event is the closed set of trace event variants. Exactly the structs
// in this file implement it.
type Event interface {
	traceEvent()
}

// EventInit announces the producer's version string at stream start.
type EventInit struct {
	ID uint8
	// Version is emitted nul-terminated and must not contain a NUL
	// byte itself.
	Version string
}

// EventLSPClientToServerMessage records one raw LSP message received
// from the client.
type EventLSPClientToServerMessage struct {
	ID   uint8
	Body []byte
}

// HistogramBucket counts how many vectors peaked at MaxSize elements.
type HistogramBucket struct {
	MaxSize uint64
	Count   uint64
}

// HistogramEntry is one owner's max-size histogram.
type HistogramEntry struct {
	// Owner names the code site owning the measured vectors. Emitted
	// nul-terminated; must not contain a NUL byte.
	Owner   string
	Buckets []HistogramBucket
}

// EventVectorMaxSizeHistogramByOwner carries internal telemetry about
// peak vector sizes, grouped by owner.
type EventVectorMaxSizeHistogramByOwner struct {
	ID      uint8
	Entries []HistogramEntry
}

// EventProcessID records the producer's operating-system process ID.
type EventProcessID struct {
	ID        uint8
	ProcessID uint64
}

// DocumentType classifies an LSP document snapshot.
type DocumentType uint8

// Document types recognized in LSPDocuments events.
const (
	DocumentTypeUnknown  DocumentType = 0
	DocumentTypeConfig   DocumentType = 1
	DocumentTypeLintable DocumentType = 2
)

// LSPDocument is a snapshot of one open LSP document.
type LSPDocument struct {
	Type       DocumentType
	URI        string
	Text       string
	LanguageID string
}

// EventLSPDocuments snapshots every document currently open in the
// LSP server.
type EventLSPDocuments struct {
	ID        uint8
	Documents []LSPDocument
}

func (EventInit) traceEvent()                          {}
func (EventLSPClientToServerMessage) traceEvent()      {}
func (EventVectorMaxSizeHistogramByOwner) traceEvent() {}
func (EventProcessID) traceEvent()                     {}
func (EventLSPDocuments) traceEvent()                  {}
