// Package logger builds the zap logger shared by both binaries.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level       string // debug, info, warn, error
	Development bool
	// File enables a rotating JSON log file.
	File string
	// Quiet drops the stdout core. The terminal UI owns the screen, so it logs
	// to File only.
	Quiet bool
}

// New builds a logger from cfg. Callers usually pass the result to
// zap.ReplaceGlobals and log through zap.S().
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	atom := zap.NewAtomicLevelAt(level)

	var cores []zapcore.Core

	if !cfg.Quiet {
		encCfg := zap.NewProductionEncoderConfig()
		enc := zapcore.NewJSONEncoder(encCfg)

		if cfg.Development {
			encCfg = zap.NewDevelopmentEncoderConfig()
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			enc = zapcore.NewConsoleEncoder(encCfg)
		}

		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), atom))
	}

	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    64,
				MaxBackups: 7,
				MaxAge:     7,
			}),
			atom,
		))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("logger: no output configured")
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}
