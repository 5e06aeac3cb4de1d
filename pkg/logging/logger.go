package logging

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields represents structured log fields
type Fields map[string]any

// Logger is the structured logging interface used across the engine
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// zapLogger adapts a zap.Logger to the Logger interface
type zapLogger struct {
	z *zap.Logger
}

// NewDefaultLogger creates a production-ready logger writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger("info")
}

// NewLogger creates a logger at the given level ("debug", "info", "warn", "error")
func NewLogger(level string) Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Config is static; Build only fails on bad output paths
		z = zap.NewNop()
	}

	return &zapLogger{z: z}
}

// NewNopLogger creates a logger that discards everything, for tests
func NewNopLogger() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// WithFields creates a logger pre-populated with the given fields
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.z.Debug(msg, flatten(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.z.Info(msg, flatten(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.z.Warn(msg, flatten(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Fields) {
	l.z.Error(msg, flatten(fields)...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{z: l.z.With(flatten([]Fields{fields})...)}
}

// flatten converts variadic Fields maps to zap fields with deterministic key order
func flatten(fieldMaps []Fields) []zap.Field {
	total := 0
	for _, m := range fieldMaps {
		total += len(m)
	}
	if total == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, total)
	for _, m := range fieldMaps {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			zapFields = append(zapFields, zap.Any(k, m[k]))
		}
	}

	return zapFields
}
