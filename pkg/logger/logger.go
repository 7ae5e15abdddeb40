package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	Named(name string) Logger
	Sync() error
}

type Field = zapcore.Field

type logger struct {
	zap *zap.Logger
}

// New builds a logger writing to the output named in cfg.
func New(cfg config.LoggerConfig) (Logger, error) {
	writeSyncer, err := createWriteSyncer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}
	return newWithSyncer(cfg, writeSyncer)
}

// newWithSyncer builds the zap core over ws. cfg.Output is only consulted
// for colour detection.
func newWithSyncer(cfg config.LoggerConfig, ws zapcore.WriteSyncer) (Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := newEncoderConfig(isEnableColors(cfg))

	encoder, err := createEncoder(cfg.Format, encoderConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	core := zapcore.NewCore(encoder, ws, level)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel))

	return &logger{zap: zapLogger}, nil
}

// newEncoderConfig writes "message" and "timestamp" keys and durations in
// milliseconds.
func newEncoderConfig(colors bool) zapcore.EncoderConfig {
	encodeLevel := zapcore.LowercaseLevelEncoder
	if colors {
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func Noop() Logger {
	return &logger{zap: zap.NewNop()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zap.DebugLevel, nil
	case "info", "":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	case "fatal":
		return zap.FatalLevel, nil
	default:
		return 0, fmt.Errorf("unknown level: %s", level)
	}
}

func createEncoder(format string, encoderConfig zapcore.EncoderConfig) (zapcore.Encoder, error) {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func createWriteSyncer(cfg config.LoggerConfig) (zapcore.WriteSyncer, error) {
	switch cfg.Output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file_path is required when output is 'file'")
		}

		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}), nil
	default:
		return nil, fmt.Errorf("unknown output: %s", cfg.Output)
	}
}

func isEnableColors(cfg config.LoggerConfig) bool {
	if !cfg.EnableColors || cfg.Output == "file" || cfg.Format == "json" {
		return false
	}

	fd := os.Stdout.Fd()
	if cfg.Output == "stderr" {
		fd = os.Stderr.Fd()
	}

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (l *logger) Debug(msg string, fields ...Field) {
	l.zap.Debug(msg, fields...)
}

func (l *logger) Info(msg string, fields ...Field) {
	l.zap.Info(msg, fields...)
}

func (l *logger) Warn(msg string, fields ...Field) {
	l.zap.Warn(msg, fields...)
}

func (l *logger) Error(msg string, fields ...Field) {
	l.zap.Error(msg, fields...)
}

func (l *logger) Fatal(msg string, fields ...Field) {
	l.zap.Fatal(msg, fields...)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
	return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}
