// Package logging builds the zap logger shared by every slidekit component.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/coursekit/slidekit/internal/config"
)

// New builds a logger for the given settings. Console output goes to
// stderr so it never mixes with slide output on stdout. When cfg.File is
// set, JSON entries are also written to a rotated file.
func New(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	var encCfg zapcore.EncoderConfig
	level := zap.InfoLevel
	switch cfg.Mode {
	case config.LogProduction:
		encCfg = zap.NewProductionEncoderConfig()
	case config.LogDevelopment, "":
		encCfg = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown log mode %q", cfg.Mode)
	}
	if verbose {
		level = zap.DebugLevel
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEnc),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     30,
				Compress:   true,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
