package tracelog

import (
	"io"
	"os"
	"time"

	"github.com/lintkit/tracelog/internal/constants"
)

const (
	// DefaultChunkSize is the default byte queue chunk size.
	DefaultChunkSize = constants.DefaultChunkSize
	// DefaultPollInterval is the default flusher poll interval.
	DefaultPollInterval = constants.DefaultPollInterval
	// DefaultFlushTimeout is the default Flush wait bound.
	DefaultFlushTimeout = constants.DefaultFlushTimeout
	// TraceFilePermissions are the default permissions for trace files.
	TraceFilePermissions = constants.TraceFilePermissions

	// minChunkSize is the smallest chunk that can hold the largest
	// scalar run a single record emits without growing on every write.
	minChunkSize = 64
)

// Config holds configuration for a trace session.
type Config struct {
	// Enabled turns tracing on. A disabled config produces a session
	// whose writes are discarded.
	Enabled bool
	// Output is where the committed trace bytes are written. Takes
	// precedence over FilePath. Must not be a terminal.
	Output io.Writer
	// FilePath is a convenience field: when Output is nil, the session
	// opens (and owns) a trace file at this path.
	FilePath string
	// FileMode sets the permissions for a newly created trace file.
	FileMode os.FileMode
	// ThreadID is the stream's thread identity, recorded in the stream
	// header.
	ThreadID uint64
	// ChunkSize sets the byte queue chunk size.
	ChunkSize int
	// PollInterval is how often the flusher drains committed bytes.
	PollInterval time.Duration
	// FlushTimeout bounds how long Flush waits.
	FlushTimeout time.Duration
	// RetryEnabled enables retrying failed output writes.
	RetryEnabled bool
	// MaxRetries is the number of retry attempts after the initial write.
	MaxRetries int
	// RetryBackoff is the base backoff duration between retries.
	RetryBackoff time.Duration
	// RetryBackoffMultiplier scales the backoff after each retry.
	RetryBackoffMultiplier float64
	// RetryMaxBackoff caps the retry backoff duration.
	RetryMaxBackoff time.Duration
	// ErrorHandler is called when the flusher fails to write.
	ErrorHandler func(error)
	// MetricsReporter receives flusher metrics snapshots.
	MetricsReporter func(FlusherMetrics)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.ChunkSize != 0 && c.ChunkSize < minChunkSize {
		return ErrInvalidChunkSize
	}

	if c.Enabled && c.Output == nil && c.FilePath == "" {
		return ErrNoOutput
	}

	return nil
}

// flusherConfig derives the flusher settings from the session config.
func (c *Config) flusherConfig() FlusherConfig {
	return FlusherConfig{
		PollInterval:           c.PollInterval,
		FlushTimeout:           c.FlushTimeout,
		ErrorHandler:           c.ErrorHandler,
		MetricsReporter:        c.MetricsReporter,
		RetryEnabled:           c.RetryEnabled,
		MaxRetries:             c.MaxRetries,
		RetryBackoff:           c.RetryBackoff,
		RetryBackoffMultiplier: c.RetryBackoffMultiplier,
		RetryMaxBackoff:        c.RetryMaxBackoff,
	}
}
