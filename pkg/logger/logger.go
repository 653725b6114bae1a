// Package logger emits structured JSON events. Call sites use the small
// package-level API (Info/Warn/Error for plain messages, InfoJ/ErrorJ for
// event + fields) so the backing zap logger can be swapped by Configure.
package logger

import (
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger.
type Options struct {
	Level      string // debug, info, warn, error
	File       string // empty means stderr
	MaxSizeMB  int    // rotation threshold when File is set
	MaxBackups int
}

var ErrInvalidLevel = errors.New("logger: invalid level")

var (
	mu   sync.RWMutex
	base = build(zapcore.InfoLevel, zapcore.Lock(os.Stderr))
)

func build(lvl zapcore.Level, ws zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, lvl)
	return zap.New(core)
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, ErrInvalidLevel
	}
	return lvl, nil
}

// Configure replaces the process logger. The previous logger is flushed.
func Configure(o Options) error {
	lvl, err := parseLevel(o.Level)
	if err != nil {
		return err
	}
	ws := zapcore.Lock(os.Stderr)
	if o.File != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
		})
	}
	mu.Lock()
	old := base
	base = build(lvl, ws)
	mu.Unlock()
	_ = old.Sync()
	return nil
}

// L returns the current zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() error { return L().Sync() }

func Info(msg string)  { L().Info(msg) }
func Warn(msg string)  { L().Warn(msg) }
func Error(msg string) { L().Error(msg) }

// InfoJ logs event with fields in stable key order.
func InfoJ(event string, fields map[string]any) { L().Info(event, toFields(event, fields)...) }

// WarnJ logs event at warn level.
func WarnJ(event string, fields map[string]any) { L().Warn(event, toFields(event, fields)...) }

// ErrorJ logs event at error level.
func ErrorJ(event string, fields map[string]any) { L().Error(event, toFields(event, fields)...) }

func toFields(event string, m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys)+1)
	out = append(out, zap.String("event", event))
	for _, k := range keys {
		out = append(out, zap.Any(k, m[k]))
	}
	return out
}
