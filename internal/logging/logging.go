// Package logging builds the process logger: zap JSON output with ISO-8601
// timestamps, written to stderr and, when a file is configured, to a
// lumberjack-rotated log file as well.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the logger. Zero values fall back to the defaults below.
type Config struct {
	Level string `env:"LOG_LEVEL"`
	File  string `env:"LOG_FILE"`

	MaxSizeMB  int `env:"LOG_MAX_SIZE_MB"`
	MaxBackups int `env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int `env:"LOG_MAX_AGE_DAYS"`
}

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 7
	defaultMaxAgeDays = 14
)

// New returns a logger for cfg. The caller owns Sync.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(newFileSink(cfg)),
			level,
		))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func newFileSink(cfg Config) *lumberjack.Logger {
	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	if sink.MaxSize <= 0 {
		sink.MaxSize = defaultMaxSizeMB
	}
	if sink.MaxBackups <= 0 {
		sink.MaxBackups = defaultMaxBackups
	}
	if sink.MaxAge <= 0 {
		sink.MaxAge = defaultMaxAgeDays
	}
	return sink
}

// ParseLevel maps a level name onto a zap level. An empty name means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
