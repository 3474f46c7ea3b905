// Package logging builds the zap loggers used by the nexus binaries.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encodings accepted by New
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// ParseLevel maps a LOG_LEVEL value to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New initializes a logger writing to stderr for the console encoding and
// to stdout otherwise
func New(level, encoding string) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	output := "stdout"
	if encoding == EncodingConsole {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		output = "stderr"
	} else {
		encoding = EncodingJSON
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
