package tracelog

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilderDefaults(t *testing.T) {
	config, err := NewConfigBuilder().
		WithOutput(&bytes.Buffer{}).
		Build()
	require.NoError(t, err)

	assert.True(t, config.Enabled)
	assert.Equal(t, DefaultChunkSize, config.ChunkSize)
	assert.Equal(t, DefaultPollInterval, config.PollInterval)
	assert.Equal(t, DefaultFlushTimeout, config.FlushTimeout)
	assert.EqualValues(t, TraceFilePermissions, config.FileMode)
}

func TestConfigBuilderSettings(t *testing.T) {
	var out bytes.Buffer

	config, err := NewConfigBuilder().
		WithOutput(&out).
		WithThreadID(9).
		WithChunkSize(128).
		WithPollInterval(time.Millisecond).
		WithFlushTimeout(time.Second).
		WithRetry(4).
		WithRetryBackoff(2*time.Millisecond, 3, 50*time.Millisecond).
		Build()
	require.NoError(t, err)

	assert.Same(t, &out, config.Output.(*bytes.Buffer))
	assert.Equal(t, uint64(9), config.ThreadID)
	assert.Equal(t, 128, config.ChunkSize)
	assert.Equal(t, time.Millisecond, config.PollInterval)
	assert.Equal(t, time.Second, config.FlushTimeout)
	assert.True(t, config.RetryEnabled)
	assert.Equal(t, 4, config.MaxRetries)
	assert.Equal(t, 2*time.Millisecond, config.RetryBackoff)
	assert.InEpsilon(t, 3.0, config.RetryBackoffMultiplier, 0.001)
	assert.Equal(t, 50*time.Millisecond, config.RetryMaxBackoff)
}

func TestConfigBuilderRejectsTinyChunks(t *testing.T) {
	_, err := NewConfigBuilder().
		WithOutput(&bytes.Buffer{}).
		WithChunkSize(16).
		Build()

	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestConfigBuilderEnabledRequiresOutput(t *testing.T) {
	_, err := NewConfigBuilder().Build()

	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestConfigBuilderDisabledNeedsNoOutput(t *testing.T) {
	config, err := NewConfigBuilder().
		WithEnabled(false).
		Build()
	require.NoError(t, err)

	assert.False(t, config.Enabled)
}

func TestConfigBuilderFileOutput(t *testing.T) {
	config, err := NewConfigBuilder().
		WithFileOutput("traces/a.bin").
		WithFileMode(0o600).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "traces/a.bin", config.FilePath)
	assert.EqualValues(t, 0o600, config.FileMode)
}
