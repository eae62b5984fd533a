// Package configloader builds tracelog configurations from
// environment variables, YAML documents, and config files using Viper.
// The surrounding linter decides where its trace settings live; this
// package turns whichever source it picks into a validated
// tracelog.Config.
package configloader

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hyp3rd/ewrap"
	"github.com/spf13/viper"

	"github.com/lintkit/tracelog"
)

const defaultEnvPrefix = "TRACELOG"

// rawConfig mirrors the externally-configurable subset of
// tracelog.Config. Callback fields (error handler, metrics reporter)
// and raw writers are code-level concerns and have no file
// representation.
type rawConfig struct {
	Enabled      *bool          `mapstructure:"enabled"`
	FilePath     string         `mapstructure:"file_path"`
	ThreadID     uint64         `mapstructure:"thread_id"`
	ChunkSize    int            `mapstructure:"chunk_size"`
	PollInterval time.Duration  `mapstructure:"poll_interval"`
	FlushTimeout time.Duration  `mapstructure:"flush_timeout"`
	Retry        rawRetryConfig `mapstructure:"retry"`
}

type rawRetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Backoff           time.Duration `mapstructure:"backoff"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
}

// FromEnv loads configuration from environment variables using the
// provided prefix. Keys are uppercased with dots replaced by
// underscores: TRACELOG_FILE_PATH, TRACELOG_RETRY_MAX_RETRIES, etc.
func FromEnv(prefix string) (*tracelog.Config, error) {
	viperInstance := viper.New()

	err := bindEnvironment(viperInstance, normalizePrefix(prefix))
	if err != nil {
		return nil, err
	}

	return fromViper(viperInstance)
}

// FromYAML parses the provided YAML document into a configuration.
func FromYAML(data []byte) (*tracelog.Config, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to read YAML configuration")
	}

	return fromViper(viperInstance)
}

// FromFile loads configuration from a file and merges environment
// overrides using the default prefix.
func FromFile(path string) (*tracelog.Config, error) {
	viperInstance := viper.New()

	err := bindEnvironment(viperInstance, defaultEnvPrefix)
	if err != nil {
		return nil, err
	}

	viperInstance.SetConfigFile(path)

	err = viperInstance.ReadInConfig()
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to read configuration file").
			WithMetadata("path", path)
	}

	return fromViper(viperInstance)
}

func fromViper(viperInstance *viper.Viper) (*tracelog.Config, error) {
	// Environment-only values are not seen by Unmarshal unless they are
	// materialized first.
	for _, key := range allKeys() {
		if !viperInstance.IsSet(key) {
			continue
		}

		viperInstance.Set(key, viperInstance.Get(key))
	}

	var raw rawConfig

	// Environment values arrive as strings; decode them weakly so
	// numeric and boolean fields fill from either source.
	err := viperInstance.Unmarshal(&raw, func(config *mapstructure.DecoderConfig) {
		config.WeaklyTypedInput = true
	})
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to decode configuration")
	}

	return applyRaw(raw)
}

// applyRaw maps the decoded values onto a ConfigBuilder so loader
// output and hand-built configs share defaulting and validation.
func applyRaw(raw rawConfig) (*tracelog.Config, error) {
	builder := tracelog.NewConfigBuilder()

	if raw.Enabled != nil {
		builder.WithEnabled(*raw.Enabled)
	}

	if raw.FilePath != "" {
		builder.WithFileOutput(raw.FilePath)
	}

	if raw.ThreadID != 0 {
		builder.WithThreadID(raw.ThreadID)
	}

	if raw.ChunkSize != 0 {
		builder.WithChunkSize(raw.ChunkSize)
	}

	if raw.PollInterval > 0 {
		builder.WithPollInterval(raw.PollInterval)
	}

	if raw.FlushTimeout > 0 {
		builder.WithFlushTimeout(raw.FlushTimeout)
	}

	if raw.Retry.Enabled {
		builder.WithRetry(raw.Retry.MaxRetries)
		builder.WithRetryBackoff(raw.Retry.Backoff, raw.Retry.BackoffMultiplier, raw.Retry.MaxBackoff)
	}

	return builder.Build()
}

func bindEnvironment(viperInstance *viper.Viper, prefix string) error {
	replacer := strings.NewReplacer(".", "_")
	viperInstance.SetEnvKeyReplacer(replacer)

	if prefix != "" {
		viperInstance.SetEnvPrefix(prefix)
	}

	viperInstance.AutomaticEnv()

	for _, key := range allKeys() {
		err := viperInstance.BindEnv(key)
		if err != nil {
			return ewrap.Wrap(err, "failed to bind environment key").
				WithMetadata("key", key).
				WithMetadata("prefix", prefix)
		}
	}

	return nil
}

func allKeys() []string {
	return []string{
		"enabled",
		"file_path",
		"thread_id",
		"chunk_size",
		"poll_interval",
		"flush_timeout",
		"retry.enabled",
		"retry.max_retries",
		"retry.backoff",
		"retry.backoff_multiplier",
		"retry.max_backoff",
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return defaultEnvPrefix
	}

	prefix = strings.TrimSuffix(prefix, "_")
	prefix = strings.ReplaceAll(prefix, "-", "_")

	return strings.ToUpper(prefix)
}
