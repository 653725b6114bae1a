package config

import (
	"errors"
	"testing"

	"github.com/zmlAEQ/bls-host/internal/randomness"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := fromLookup(env(nil))
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if c.LogLevel != "info" || c.MaxInFlight != 0 || c.MaxRandom != randomness.MaxDraw {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := fromLookup(env(map[string]string{
		EnvLogLevel:    "debug",
		EnvLogFile:     "/tmp/host.log",
		EnvMaxInFlight: "8",
		EnvMaxRandom:   "1024",
	}))
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if c.LogLevel != "debug" || c.LogFile != "/tmp/host.log" || c.MaxInFlight != 8 || c.MaxRandom != 1024 {
		t.Fatalf("unexpected config %+v", c)
	}
	if o := c.LoggerOptions(); o.File != c.LogFile || o.Level != "debug" {
		t.Fatalf("logger options %+v", o)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	for _, m := range []map[string]string{
		{EnvMaxInFlight: "many"},
		{EnvMaxInFlight: "-1"},
		{EnvMaxRandom: "-5"},
		{EnvMaxRandom: "999999999"},
	} {
		if _, err := fromLookup(env(m)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%v: want ErrInvalidConfig, got %v", m, err)
		}
	}
}
