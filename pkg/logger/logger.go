// Package logger wraps zap with level and environment aware construction.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger exposes a keyvals-style logging surface over zap
type Logger struct {
	zap     *zap.Logger
	sugared *zap.SugaredLogger
}

// New creates a logger for the given level and environment. Production
// gets JSON output, everything else the development console encoder.
func New(level, environment string) *Logger {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}

	return &Logger{
		zap:     l,
		sugared: l.Sugar(),
	}
}

// Zap returns the underlying structured logger for components that take
// *zap.Logger directly
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Debug logs at debug level with alternating key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugared.Debugw(msg, keysAndValues...)
}

// Info logs at info level with alternating key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugared.Infow(msg, keysAndValues...)
}

// Warn logs at warn level with alternating key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugared.Warnw(msg, keysAndValues...)
}

// Error logs at error level with alternating key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugared.Errorw(msg, keysAndValues...)
}

// Fatal logs at fatal level and exits
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugared.Fatalw(msg, keysAndValues...)
}

// ForRequest returns a sugared logger carrying request identity fields
func (l *Logger) ForRequest(requestID, method, path string) *zap.SugaredLogger {
	return l.sugared.With(
		"request_id", requestID,
		"method", method,
		"path", path,
	)
}

// Sync flushes buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}
