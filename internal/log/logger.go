// Package log builds the zap logger used by the linekv binaries.
//
// Entries below warn level go to the info sink (stdout by default), warn
// and above go to the error sink (stderr by default).
package log

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FormatConsole selects the human readable encoder
	FormatConsole = "console"
	// FormatJSON selects the JSON encoder
	FormatJSON = "json"
)

// Options controls logger construction
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is FormatConsole or FormatJSON. Empty means console.
	Format string
	// Name is attached to every entry when non-empty.
	Name string

	// Info and Err override the default stdout/stderr sinks.
	Info zapcore.WriteSyncer
	Err  zapcore.WriteSyncer
}

// ParseLevel converts a level name to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return l, errors.Wrapf(err, "invalid log level %q", level)
	}
	return l, nil
}

// New creates a logger from opts
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.ConsoleSeparator = " "

	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, errors.Errorf("unsupported log format %q", opts.Format)
	}

	infoSink := opts.Info
	if infoSink == nil {
		infoSink = zapcore.Lock(os.Stdout)
	}
	errSink := opts.Err
	if errSink == nil {
		errSink = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, infoSink, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= level && lvl < zapcore.WarnLevel
		})),
		zapcore.NewCore(encoder.Clone(), errSink, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= level && lvl >= zapcore.WarnLevel
		})),
	)

	logger := zap.New(core)
	if opts.Name != "" {
		logger = logger.Named(opts.Name)
	}
	return logger, nil
}
