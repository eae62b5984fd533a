package tracelog

import (
	"io"
	"os"
	"time"
)

// ConfigBuilder provides a fluent API for constructing trace session
// configurations.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new builder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: Config{
			Enabled:      true,
			FileMode:     TraceFilePermissions,
			ChunkSize:    DefaultChunkSize,
			PollInterval: DefaultPollInterval,
			FlushTimeout: DefaultFlushTimeout,
		},
	}
}

// WithEnabled turns tracing on or off.
func (b *ConfigBuilder) WithEnabled(enabled bool) *ConfigBuilder {
	b.config.Enabled = enabled

	return b
}

// WithOutput sets the output destination.
func (b *ConfigBuilder) WithOutput(output io.Writer) *ConfigBuilder {
	b.config.Output = output

	return b
}

// WithFileOutput configures the session to write the trace to a file.
// The file is created when the session starts and appended to if it
// exists.
func (b *ConfigBuilder) WithFileOutput(path string) *ConfigBuilder {
	b.config.FilePath = path

	return b
}

// WithFileMode sets the permissions used when creating the trace file.
func (b *ConfigBuilder) WithFileMode(mode os.FileMode) *ConfigBuilder {
	b.config.FileMode = mode

	return b
}

// WithThreadID sets the stream's thread identity.
func (b *ConfigBuilder) WithThreadID(threadID uint64) *ConfigBuilder {
	b.config.ThreadID = threadID

	return b
}

// WithChunkSize sets the byte queue chunk size.
func (b *ConfigBuilder) WithChunkSize(size int) *ConfigBuilder {
	b.config.ChunkSize = size

	return b
}

// WithPollInterval sets how often the flusher drains committed bytes.
func (b *ConfigBuilder) WithPollInterval(interval time.Duration) *ConfigBuilder {
	b.config.PollInterval = interval

	return b
}

// WithFlushTimeout bounds how long Flush waits.
func (b *ConfigBuilder) WithFlushTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.FlushTimeout = timeout

	return b
}

// WithRetry enables write retries with the given attempt budget.
func (b *ConfigBuilder) WithRetry(maxRetries int) *ConfigBuilder {
	b.config.RetryEnabled = true
	b.config.MaxRetries = maxRetries

	return b
}

// WithRetryBackoff sets the base, multiplier, and cap of the retry
// backoff schedule.
func (b *ConfigBuilder) WithRetryBackoff(base time.Duration, multiplier float64, maximum time.Duration) *ConfigBuilder {
	b.config.RetryBackoff = base
	b.config.RetryBackoffMultiplier = multiplier
	b.config.RetryMaxBackoff = maximum

	return b
}

// WithErrorHandler sets the callback invoked on flusher write errors.
func (b *ConfigBuilder) WithErrorHandler(handler func(error)) *ConfigBuilder {
	b.config.ErrorHandler = handler

	return b
}

// WithMetricsReporter sets the callback receiving flusher metrics.
func (b *ConfigBuilder) WithMetricsReporter(reporter func(FlusherMetrics)) *ConfigBuilder {
	b.config.MetricsReporter = reporter

	return b
}

// Build validates and returns the configuration.
func (b *ConfigBuilder) Build() (*Config, error) {
	config := b.config

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}
