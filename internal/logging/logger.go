// Package logging builds the zap logger used across a run.
package logging

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"tsvgen/internal/config"
	"tsvgen/internal/errs"
)

// ParseLevel maps a level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, errs.Configf("invalid --log-level %q (want debug|info|warn|error)", s)
}

// New returns a logger writing to stderr and, when cfg.File is set, to a
// rotating file. quiet raises the stderr level to warn. The returned func
// flushes and closes the sinks.
func New(cfg config.LogConfig, stderr io.Writer, quiet bool) (*zap.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "", "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, nil, errs.Configf("invalid --log-format %q (want console|json)", cfg.Format)
	}

	stderrLevel := level
	if quiet && stderrLevel < zapcore.WarnLevel {
		stderrLevel = zapcore.WarnLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(stderr), stderrLevel),
	}

	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		// files always get structured lines
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level))
	}

	log := zap.New(zapcore.NewTee(cores...)).Named("tsvgen")
	closeFn := func() {
		_ = log.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return log, closeFn, nil
}
