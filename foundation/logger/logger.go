// Package logger provides a convenience function to constructing a logger
// for use, tagged with the calling service's name.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a *zap.SugaredLogger configured for JSON output at info
// level, with every entry tagged with service.
func New(service string) (*zap.SugaredLogger, error) {
	return NewWithLevel(service, zapcore.InfoLevel)
}

// NewWithLevel constructs a *zap.SugaredLogger the same way as New, but at
// the specified minimum level.
func NewWithLevel(service string, level zapcore.Level) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.StacktraceKey = ""
	config.DisableStacktrace = true

	log, err := config.Build(zap.WithCaller(true))
	if err != nil {
		return nil, err
	}

	logger := log.Sugar().With("service", service)

	return logger, nil
}

// ParseLevel translates a LOG_LEVEL config value into a zapcore.Level,
// defaulting to info for anything unrecognized.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
