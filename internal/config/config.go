// Package config holds runtime settings for the host adapter and its
// binaries. Values come from defaults, then BLSHOST_* environment variables;
// command-line flags may override the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/pkg/logger"
)

const (
	EnvLogLevel    = "BLSHOST_LOG_LEVEL"
	EnvLogFile     = "BLSHOST_LOG_FILE"
	EnvMaxInFlight = "BLSHOST_MAX_INFLIGHT"
	EnvMaxRandom   = "BLSHOST_MAX_RANDOM"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the process configuration.
type Config struct {
	LogLevel    string
	LogFile     string
	MaxInFlight int // concurrent boundary calls; 0 means unlimited
	MaxRandom   int // largest get_random request
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "info",
		MaxRandom: randomness.MaxDraw,
	}
}

// FromEnv applies environment overrides on top of Default.
func FromEnv() (Config, error) { return fromLookup(os.LookupEnv) }

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}
	var err error
	if c.MaxInFlight, err = intVar(lookup, EnvMaxInFlight, c.MaxInFlight); err != nil {
		return c, err
	}
	if c.MaxRandom, err = intVar(lookup, EnvMaxRandom, c.MaxRandom); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func intVar(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return n, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.MaxInFlight < 0 {
		return fmt.Errorf("%w: max in-flight %d", ErrInvalidConfig, c.MaxInFlight)
	}
	if c.MaxRandom < 0 || c.MaxRandom > randomness.MaxDraw {
		return fmt.Errorf("%w: max random %d not in [0, %d]", ErrInvalidConfig, c.MaxRandom, randomness.MaxDraw)
	}
	return nil
}

// LoggerOptions maps the logging settings onto pkg/logger.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, File: c.LogFile, MaxSizeMB: 64, MaxBackups: 3}
}
