// Package logging configures the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init builds the global logger. Format "json" selects the production encoder,
// anything else the development console encoder.
func Init(level, format string) {
	var config zap.Config

	if format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	l, err := config.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	log = l
}

// L returns the global logger. Before Init it is a nop logger, which keeps
// library code and tests quiet.
func L() *zap.Logger {
	return log
}

// Named returns a named child of the global logger.
func Named(name string) *zap.Logger {
	return log.Named(name)
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() {
	_ = log.Sync()
}
