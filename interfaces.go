package linekv

import (
	"time"

	"go.uber.org/zap"

	"github.com/raniellyferreira/linekv/internal/log"
)

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Logger interface for custom logging implementations
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// MetricsCollector interface for metrics collection
type MetricsCollector interface {
	// RecordCommandProcessed records a processed command with its duration
	RecordCommandProcessed(cmd string, duration time.Duration)

	// RecordConnection records an accepted client connection
	RecordConnection()

	// RecordDisconnection records a closed client connection
	RecordDisconnection()

	// RecordError records an error event
	RecordError(errorType string)
}

// zapLogger is the Logger implementation backed by zap
type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger adapts a zap logger to Logger
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// defaultLogger returns an info-level console logger, or a no-op logger if
// it cannot be built
func defaultLogger() Logger {
	l, err := log.New(log.Options{Name: "linekv"})
	if err != nil {
		return &zapLogger{l: zap.NewNop()}
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, fields ...Field) {
	z.l.Debug(msg, zapFields(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...Field) {
	z.l.Info(msg, zapFields(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...Field) {
	z.l.Error(msg, zapFields(fields)...)
}

func zapFields(fields []Field) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			result = append(result, zap.NamedError(f.Key, err))
			continue
		}
		result = append(result, zap.Any(f.Key, f.Value))
	}
	return result
}
