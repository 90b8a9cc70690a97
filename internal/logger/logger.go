package logger

import (
	"io"
	"os"

	"github.com/samvad-hq/ltiaas-client/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface injected into components.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// objLogger writes to the package-level logger from its own methods so the
// caller skip set in Init still points at the component's call site.
type objLogger struct{}

func (objLogger) InfoObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Info(msg, zap.Any(key, obj))
	}
}

func (objLogger) DebugObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Debug(msg, zap.Any(key, obj))
	}
}

func (objLogger) WarnObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Warn(msg, zap.Any(key, obj))
	}
}

func (objLogger) ErrorObj(msg, key string, obj interface{}) {
	if S != nil {
		S.Desugar().Error(msg, zap.Any(key, obj))
	}
}

// Default returns a Logger backed by the package-level logger.
func Default() Logger { return objLogger{} }

// Init initializes a zap SugaredLogger using settings from config, writing to stdout.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	return InitTo(cfg, os.Stdout)
}

// InitTo is Init with an explicit destination.
func InitTo(cfg *config.Config, w io.Writer) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar().With("app", cfg.AppName, "env", cfg.Env)
	S = sugar
	return sugar, nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// These log the given object as a single structured field named `key`.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
