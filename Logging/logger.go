package Logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process-wide zap logger and installs it as the global.
// Production gets JSON output, anything else gets the colored console encoder.
func Init(env, level string) error {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err = cfg.Build()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = cfg.Build()
	}
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)
	return nil
}
