// Package xlog provides the structured logger used across the module. It
// wraps zap the same way the teacher codebase does, trimmed to what the DKG
// core needs: level-tagged key/value logging for per-item diagnostics (a bad
// ciphertext, a missing bundle) that must never escalate to a fatal error.
package xlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the subset of structured logging calls the core uses.
type Logger interface {
	Debugw(msg string, keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
}

type log struct {
	*zap.SugaredLogger
}

func (l *log) With(args ...interface{}) Logger {
	return &log{l.SugaredLogger.With(args...)}
}

func (l *log) Named(s string) Logger {
	return &log{l.SugaredLogger.Named(s)}
}

const (
	DebugLevel = int(zapcore.DebugLevel)
	InfoLevel  = int(zapcore.InfoLevel)
	WarnLevel  = int(zapcore.WarnLevel)
	ErrorLevel = int(zapcore.ErrorLevel)
)

// DefaultLevel is used by DefaultLogger; override before first use to change it.
var DefaultLevel = InfoLevel

var once sync.Once
var defaultLogger Logger

// DefaultLogger returns a process-wide logger writing JSON to stdout at DefaultLevel.
func DefaultLogger() Logger {
	once.Do(func() {
		defaultLogger = New(os.Stdout, DefaultLevel)
	})
	return defaultLogger
}

// New builds a logger writing to w at the given zapcore level.
func New(w zapcore.WriteSyncer, level int) Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zapcore.Level(level))
	return &log{zap.New(core).Sugar()}
}

// Noop returns a logger that discards everything; useful in unit tests that
// want to exercise the per-item diagnostic path without polluting output.
func Noop() Logger {
	return &log{zap.NewNop().Sugar()}
}
